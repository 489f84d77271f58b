package yahoo

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/sawpanic/valuescan/internal/models"
)

type financeEnvelope struct {
	Finance struct {
		Result []struct {
			Quotes []json.RawMessage `json:"quotes"`
		} `json:"result"`
		Error *errorBody `json:"error"`
	} `json:"finance"`
}

func (e financeEnvelope) quotes() ([]models.LightQuote, error) {
	var out []models.LightQuote
	for _, r := range e.Finance.Result {
		for _, raw := range r.Quotes {
			var q models.LightQuote
			if err := json.Unmarshal(raw, &q); err != nil {
				// trending entries can be bare strings
				var sym string
				if json.Unmarshal(raw, &sym) != nil {
					return nil, err
				}
				q.Symbol = sym
			}
			if q.Symbol != "" {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

// Screener fetches one page of a predefined screen.
func (c *Client) Screener(ctx context.Context, screenID string, offset, count int) ([]models.LightQuote, error) {
	params := url.Values{}
	params.Set("scrIds", screenID)
	params.Set("count", strconv.Itoa(count))
	params.Set("start", strconv.Itoa(offset))
	params.Set("formatted", "false")

	var env financeEnvelope
	if err := c.get(ctx, "/v1/finance/screener/predefined/saved", params, &env); err != nil {
		return nil, err
	}
	if env.Finance.Error != nil {
		return nil, &APIError{Endpoint: "/v1/finance/screener", Code: env.Finance.Error.Code, Description: env.Finance.Error.Description}
	}
	return env.quotes()
}

// Trending fetches the trending symbols for a region.
func (c *Client) Trending(ctx context.Context, region string) ([]models.LightQuote, error) {
	var env financeEnvelope
	if err := c.get(ctx, "/v1/finance/trending/"+url.PathEscape(region), nil, &env); err != nil {
		return nil, err
	}
	if env.Finance.Error != nil {
		return nil, &APIError{Endpoint: "/v1/finance/trending", Code: env.Finance.Error.Code, Description: env.Finance.Error.Description}
	}
	return env.quotes()
}
