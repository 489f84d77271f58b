// Package selection ranks scored results into the final, size-bounded list
// and backfills shortfalls through ordered fallback tiers.
package selection

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/application/pipeline"
	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/providers"
)

const DefaultTopK = 10

// Config controls ranking and backfill.
type Config struct {
	Target        int
	TopK          int
	Strict        bool
	MinPrice      float64
	SymbolTimeout time.Duration
	Filters       pipeline.Filters
}

// Result is the final selection plus the per-dimension rankings.
type Result struct {
	Selection models.Selection
	TopK      models.TopKTable
	scored    map[string]models.ScoredResult
}

// NewResult assembles a Result from a finished selection.
func NewResult(sel models.Selection, topK models.TopKTable, results []models.ScoredResult) *Result {
	res := &Result{Selection: sel, TopK: topK, scored: make(map[string]models.ScoredResult, len(results))}
	for _, sr := range results {
		res.scored[sr.Symbol] = sr
	}
	return res
}

// Scored returns the scored result for a selected symbol, if it has one.
func (r *Result) Scored(symbol string) (models.ScoredResult, bool) {
	s, ok := r.scored[symbol]
	return s, ok
}

// Resolver turns a pipeline outcome into a Result.
type Resolver struct {
	cfg     Config
	fetcher providers.Fetcher
	pacer   pipeline.Pacer
}

func NewResolver(cfg Config, fetcher providers.Fetcher, pacer pipeline.Pacer) *Resolver {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = pipeline.DefaultSymbolTimeout
	}
	return &Resolver{cfg: cfg, fetcher: fetcher, pacer: pacer}
}

// Resolve ranks by composite score and, outside manual mode, backfills in tier
// order until the target is met.
func (r *Resolver) Resolve(ctx context.Context, out *pipeline.Outcome) (*Result, error) {
	res := NewResult(models.Selection{}, nil, out.Results)

	target := r.cfg.Target
	if out.Manual {
		target = out.Candidates.Len()
	}

	b := &builder{target: target}
	for _, sr := range rankByComposite(out.Results) {
		if !b.add(sr.Symbol, models.TierScored) {
			break
		}
	}
	log.Info().Int("selected", b.sel.Len()).Int("target", target).Msg("Selected by composite score")

	if !out.Manual {
		if err := r.backfill(ctx, out, b); err != nil {
			return nil, err
		}
	}

	res.Selection = b.sel
	res.TopK = TopK(res.Selection, out.Results, r.cfg.TopK)
	return res, nil
}

// backfill fills the shortfall tier by tier. Skip-listed symbols are never
// quoted or selected.
func (r *Resolver) backfill(ctx context.Context, out *pipeline.Outcome, b *builder) error {
	tier := func(name models.Tier, fill func() error) error {
		if b.full() {
			return nil
		}
		if err := fill(); err != nil {
			return err
		}
		log.Info().Str("tier", string(name)).Int("selected", b.sel.Len()).Int("target", b.target).Msg("Backfill tier complete")
		return nil
	}
	open := func(sym string) bool {
		return !b.full() && !b.has(sym) && !out.SkipListed(sym)
	}

	// (a) eligible symbols seen this run that did not make the scored cut
	err := tier(models.TierEligibleBackfill, func() error {
		for _, sym := range out.Eligible {
			if open(sym) && r.admit(sym) {
				b.add(sym, models.TierEligibleBackfill)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// (b) remaining candidates re-verified with a light quote
	err = tier(models.TierCandidateBackfill, func() error {
		for _, c := range out.Candidates.Candidates() {
			if b.full() {
				break
			}
			if !open(c.Symbol) {
				continue
			}
			q, err := r.liveQuote(ctx, c.Symbol)
			if err != nil {
				return err
			}
			if q != nil && pipeline.Eligible(q.Listing(), r.cfg.MinPrice) && r.admit(c.Symbol) {
				b.add(c.Symbol, models.TierCandidateBackfill)
			}
			if err := r.pacer.Jitter(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// (c) discovery metadata not yet tried
	err = tier(models.TierMetaBackfill, func() error {
		for _, c := range out.Candidates.WithMeta() {
			if open(c.Symbol) && pipeline.Eligible(c.Listing, r.cfg.MinPrice) && r.admit(c.Symbol) {
				b.add(c.Symbol, models.TierMetaBackfill)
			}
		}
		return nil
	})
	if err != nil || r.cfg.Strict {
		return err
	}

	pad := func(name models.Tier, cands []models.Candidate) {
		if b.full() {
			return
		}
		for _, c := range cands {
			if open(c.Symbol) {
				b.add(c.Symbol, name)
			}
		}
		log.Info().Str("tier", string(name)).Int("selected", b.sel.Len()).Int("target", b.target).Msg("Backfill tier complete")
	}
	pad(models.TierCandidatePad, out.Candidates.Candidates())
	pad(models.TierMetaPad, out.Candidates.WithMeta())
	return nil
}

// liveQuote bounds one re-verification quote by the per-symbol timeout. A
// deadline or failure is a soft miss; only run cancellation is returned.
func (r *Resolver) liveQuote(ctx context.Context, sym string) (*models.LightQuote, error) {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SymbolTimeout)
	defer cancel()

	q, err := r.fetcher.FetchLightQuote(sctx, sym)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("symbol", sym).Dur("timeout", r.cfg.SymbolTimeout).Msg("Backfill quote timed out")
		} else {
			log.Warn().Err(err).Str("symbol", sym).Msg("Backfill quote failed")
		}
		return nil, nil
	}
	return q, nil
}

// admit re-checks the sector/industry filters against the cached summary.
func (r *Resolver) admit(sym string) bool {
	if !r.cfg.Filters.Active() {
		return true
	}
	s, ok := r.fetcher.CachedSummary(sym)
	return ok && r.cfg.Filters.Match(s)
}

func rankByComposite(results []models.ScoredResult) []models.ScoredResult {
	ranked := make([]models.ScoredResult, 0, len(results))
	for _, sr := range results {
		if sr.Scoreable() {
			ranked = append(ranked, sr)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Composite > ranked[j].Composite
	})
	return ranked
}

type builder struct {
	target int
	sel    models.Selection
	seen   map[string]bool
}

func (b *builder) full() bool { return b.sel.Len() >= b.target }

func (b *builder) has(sym string) bool { return b.seen[sym] }

// add appends sym unless the selection is full or already holds it. It
// reports whether there is still room.
func (b *builder) add(sym string, tier models.Tier) bool {
	if b.full() {
		return false
	}
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if !b.seen[sym] {
		b.seen[sym] = true
		b.sel.Entries = append(b.sel.Entries, models.SelectionEntry{Symbol: sym, Tier: tier})
	}
	return !b.full()
}
