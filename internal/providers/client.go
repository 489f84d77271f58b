// Package providers is the cache-backed, paced fetch client for the two
// upstream payload kinds.
package providers

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/data/cache"
	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/providers/guards"
	"github.com/sawpanic/valuescan/internal/providers/yahoo"
)

// Fetcher is what the pipeline and resolver consume.
type Fetcher interface {
	// FetchLightQuote returns nil, nil when every attempt failed.
	FetchLightQuote(ctx context.Context, symbol string) (*models.LightQuote, error)
	// FetchFullSummary returns an error wrapping guards.ErrExhausted when every attempt failed.
	FetchFullSummary(ctx context.Context, symbol string) (*models.Summary, error)
	CachedLightQuote(symbol string) (*models.LightQuote, bool)
	CachedSummary(symbol string) (*models.Summary, bool)
	Flush() error
	Stats() guards.Counts
}

// Upstream is the transport surface the client wraps.
type Upstream interface {
	Quote(ctx context.Context, symbol string) (*models.LightQuote, error)
	QuoteSummary(ctx context.Context, symbol string) (*models.Summary, error)
}

// Client reads through the snapshot cache and guards every live call.
type Client struct {
	upstream Upstream
	store    *cache.Store
	guard    *guards.Guard
}

var _ Fetcher = (*Client)(nil)

// NewClient wires the transport, cache and guard together.
func NewClient(upstream Upstream, store *cache.Store, guard *guards.Guard) *Client {
	return &Client{upstream: upstream, store: store, guard: guard}
}

// ClassifyError labels HTML block pages as markup and everything else as structured.
func ClassifyError(err error) string {
	if yahoo.IsMarkup(err) {
		return guards.ClassMarkup
	}
	return guards.ClassStructured
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (c *Client) CachedLightQuote(symbol string) (*models.LightQuote, bool) {
	return c.store.Quotes.Get(normalizeSymbol(symbol))
}

func (c *Client) CachedSummary(symbol string) (*models.Summary, bool) {
	return c.store.Summaries.Get(normalizeSymbol(symbol))
}

func (c *Client) FetchLightQuote(ctx context.Context, symbol string) (*models.LightQuote, error) {
	symbol = normalizeSymbol(symbol)
	tel := c.guard.Telemetry()

	if q, ok := c.store.Quotes.Get(symbol); ok {
		tel.RecordCacheHit("quote")
		return q, nil
	}
	tel.RecordCacheMiss("quote")

	q, err := guards.Execute(ctx, c.guard, guards.QuotePolicy(), symbol, func(ctx context.Context) (*models.LightQuote, error) {
		return c.upstream.Quote(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	if q != nil {
		c.store.Quotes.Put(symbol, q)
	}
	return q, nil
}

func (c *Client) FetchFullSummary(ctx context.Context, symbol string) (*models.Summary, error) {
	symbol = normalizeSymbol(symbol)
	tel := c.guard.Telemetry()

	if s, ok := c.store.Summaries.Get(symbol); ok {
		tel.RecordCacheHit("summary")
		return s, nil
	}
	tel.RecordCacheMiss("summary")

	s, err := guards.Execute(ctx, c.guard, guards.SummaryPolicy(), symbol, func(ctx context.Context) (*models.Summary, error) {
		return c.upstream.QuoteSummary(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	if s != nil {
		c.store.Summaries.Put(symbol, s)
	}
	return s, nil
}

// Flush persists both snapshots. Write errors are logged and returned.
func (c *Client) Flush() error {
	if err := c.store.Flush(); err != nil {
		log.Warn().Err(err).Str("dir", c.store.Dir()).Msg("Cache flush failed")
		return err
	}
	log.Info().
		Int("quotes", c.store.Quotes.Len()).
		Int("summaries", c.store.Summaries.Len()).
		Msg("Cache flushed")
	return nil
}

func (c *Client) Stats() guards.Counts {
	return c.guard.Telemetry().Counts()
}
