package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sawpanic/valuescan/internal/models"
)

// SummaryModules are the quoteSummary modules the scorer reads.
var SummaryModules = []string{"price", "summaryDetail", "financialData", "defaultKeyStatistics", "summaryProfile"}

type quoteEnvelope struct {
	QuoteResponse struct {
		Result []models.LightQuote `json:"result"`
		Error  *errorBody          `json:"error"`
	} `json:"quoteResponse"`
}

// Quote fetches the light quote for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.LightQuote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var env quoteEnvelope
	if err := c.get(ctx, "/v7/finance/quote", params, &env); err != nil {
		return nil, err
	}
	if env.QuoteResponse.Error != nil {
		return nil, &APIError{
			StatusCode:  http.StatusOK,
			Endpoint:    "/v7/finance/quote",
			Code:        env.QuoteResponse.Error.Code,
			Description: env.QuoteResponse.Error.Description,
		}
	}
	for i := range env.QuoteResponse.Result {
		q := env.QuoteResponse.Result[i]
		if strings.EqualFold(q.Symbol, symbol) {
			return &q, nil
		}
	}
	return nil, &APIError{StatusCode: http.StatusOK, Endpoint: "/v7/finance/quote", Code: "Not Found", Description: "no quote for " + symbol}
}

type summaryEnvelope struct {
	QuoteSummary struct {
		Result []json.RawMessage `json:"result"`
		Error  *errorBody        `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummary fetches the full financial summary for one symbol.
func (c *Client) QuoteSummary(ctx context.Context, symbol string) (*models.Summary, error) {
	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	params := url.Values{}
	params.Set("modules", strings.Join(SummaryModules, ","))
	params.Set("formatted", "false")

	var env summaryEnvelope
	if err := c.get(ctx, path, params, &env); err != nil {
		return nil, err
	}
	if env.QuoteSummary.Error != nil {
		return nil, &APIError{
			StatusCode:  http.StatusOK,
			Endpoint:    "/v10/finance/quoteSummary",
			Code:        env.QuoteSummary.Error.Code,
			Description: env.QuoteSummary.Error.Description,
		}
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Endpoint: "/v10/finance/quoteSummary", Code: "Not Found", Description: "empty result for " + symbol}
	}

	summary, err := decodeSummary(env.QuoteSummary.Result[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode summary for %s: %w", symbol, err)
	}
	return summary, nil
}

// decodeSummary unwraps {"raw": x, "fmt": ...} number objects and drops the
// empty objects Yahoo uses for missing values before decoding.
func decodeSummary(raw json.RawMessage) (*models.Summary, error) {
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	flat, err := json.Marshal(flattenRaw(tree))
	if err != nil {
		return nil, err
	}
	var s models.Summary
	if err := json.Unmarshal(flat, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func flattenRaw(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if r, ok := t["raw"]; ok {
			return r
		}
		if len(t) == 0 {
			return nil
		}
		for k, child := range t {
			t[k] = flattenRaw(child)
		}
		return t
	case []interface{}:
		for i, child := range t {
			t[i] = flattenRaw(child)
		}
		return t
	default:
		return v
	}
}
