// Package pipeline runs the eligibility and enrichment loop over a candidate set.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/discovery"
	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/progress"
	"github.com/sawpanic/valuescan/internal/providers"
	"github.com/sawpanic/valuescan/internal/scoring"
)

const DefaultSymbolTimeout = 45 * time.Second

// Config controls the loop.
type Config struct {
	MinPrice      float64
	SymbolTimeout time.Duration
	SkipTickers   []string
	Filters       Filters
}

// Pacer spaces out per-symbol work.
type Pacer interface {
	Jitter(ctx context.Context) error
}

// Outcome is everything the resolver and the report need from a run.
type Outcome struct {
	Candidates *discovery.CandidateSet
	Manual     bool
	Skip       map[string]bool

	Results  []models.ScoredResult
	Eligible []string

	Processed  int
	Skipped    int
	Ineligible int
	Filtered   int
	Failed     int
	Duration   time.Duration
}

// SkipListed reports whether sym is on the run's skip list.
func (o *Outcome) SkipListed(sym string) bool {
	return o.Skip[strings.ToUpper(sym)]
}

// Runner iterates candidates strictly sequentially so that at most one
// upstream request is outstanding.
type Runner struct {
	cfg      Config
	fetcher  providers.Fetcher
	scorer   *scoring.Calculator
	pacer    Pacer
	reporter *progress.Reporter
	skip     map[string]bool
}

// NewRunner creates a runner.
func NewRunner(cfg Config, fetcher providers.Fetcher, scorer *scoring.Calculator, pacer Pacer, reporter *progress.Reporter) *Runner {
	if cfg.SymbolTimeout <= 0 {
		cfg.SymbolTimeout = DefaultSymbolTimeout
	}
	if reporter == nil {
		reporter = progress.NewReporter()
	}
	skip := make(map[string]bool, len(cfg.SkipTickers))
	for _, s := range cfg.SkipTickers {
		skip[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	return &Runner{cfg: cfg, fetcher: fetcher, scorer: scorer, pacer: pacer, reporter: reporter, skip: skip}
}

// Run processes every candidate once. A single symbol's failure never stops
// the loop; only context cancellation does.
func (r *Runner) Run(ctx context.Context, set *discovery.CandidateSet, manual bool) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{Candidates: set, Manual: manual, Skip: r.skip}
	symbols := set.Symbols()
	total := len(symbols)

	log.Info().Int("candidates", total).Bool("manual", manual).Float64("min_price", r.cfg.MinPrice).Msg("Starting eligibility loop")

	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			out.Duration = time.Since(start)
			return out, err
		}

		cand, _ := set.Get(sym)
		if err := r.processSymbol(ctx, cand, out); err != nil {
			out.Duration = time.Since(start)
			return out, err
		}

		out.Processed = i + 1
		r.reporter.Processing(i+1, total, sym, r.fetcher.Stats())
	}

	out.Duration = time.Since(start)
	log.Info().
		Int("processed", out.Processed).
		Int("eligible", len(out.Eligible)).
		Int("scored", len(out.Results)).
		Int("skipped", out.Skipped).
		Int("ineligible", out.Ineligible).
		Int("filtered", out.Filtered).
		Int("failed", out.Failed).
		Dur("duration", out.Duration).
		Msg("Eligibility loop complete")
	r.reporter.Scored(len(out.Eligible), len(out.Results))
	return out, nil
}

// processSymbol returns an error only when the run must stop.
func (r *Runner) processSymbol(ctx context.Context, cand models.Candidate, out *Outcome) error {
	sym := cand.Symbol
	if r.skip[sym] {
		out.Skipped++
		log.Debug().Str("symbol", sym).Msg("Skip-listed")
		return nil
	}

	if err := r.pacer.Jitter(ctx); err != nil {
		return err
	}

	listing := r.ResolveListing(cand)
	if !listing.Known() {
		q, err := r.liveQuote(ctx, sym)
		if err != nil {
			return err
		}
		if q != nil {
			listing = q.Listing()
		}
	}
	if !Eligible(listing, r.cfg.MinPrice) {
		out.Ineligible++
		return nil
	}

	out.Eligible = append(out.Eligible, sym)

	summary, err := r.summary(ctx, sym)
	if err != nil {
		return err
	}
	if summary == nil {
		out.Failed++
		return nil
	}

	if !r.cfg.Filters.Match(summary) {
		out.Filtered++
		log.Debug().Str("symbol", sym).Str("sector", summary.SummaryProfile.Sector).Str("industry", summary.SummaryProfile.Industry).Msg("Excluded by sector/industry filter")
		return nil
	}

	res := r.scorer.Score(sym, summary)
	if !res.Scoreable() {
		log.Debug().Str("symbol", sym).Int("fields", r.scorer.AvailableFields(scoring.ExtractInputs(summary))).Msg("Composite unscoreable")
	}
	out.Results = append(out.Results, res)
	return nil
}

// ResolveListing walks the cheap sources in order: discovery metadata, then a
// fresh cached summary, then a fresh cached light quote. The first usable
// listing wins; otherwise the first partial one is returned.
func (r *Runner) ResolveListing(cand models.Candidate) models.Listing {
	var partial models.Listing
	consider := func(l models.Listing) bool {
		if l.Known() {
			return true
		}
		if partial.Empty() {
			partial = l
		}
		return false
	}

	if cand.HasMeta && consider(cand.Listing) {
		return cand.Listing
	}
	if s, ok := r.fetcher.CachedSummary(cand.Symbol); ok {
		if l := s.Listing(); consider(l) {
			return l
		}
	}
	if q, ok := r.fetcher.CachedLightQuote(cand.Symbol); ok {
		if l := q.Listing(); consider(l) {
			return l
		}
	}
	return partial
}

func (r *Runner) liveQuote(ctx context.Context, sym string) (*models.LightQuote, error) {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SymbolTimeout)
	defer cancel()

	q, err := r.fetcher.FetchLightQuote(sctx, sym)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("symbol", sym).Msg("Light quote unavailable")
		return nil, nil
	}
	return q, nil
}

// summary returns nil without error when the symbol should simply go unscored.
func (r *Runner) summary(ctx context.Context, sym string) (*models.Summary, error) {
	if s, ok := r.fetcher.CachedSummary(sym); ok {
		return s, nil
	}

	sctx, cancel := context.WithTimeout(ctx, r.cfg.SymbolTimeout)
	defer cancel()

	s, err := r.fetcher.FetchFullSummary(sctx, sym)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Str("symbol", sym).Dur("timeout", r.cfg.SymbolTimeout).Msg("Summary timed out")
		} else {
			log.Warn().Err(err).Str("symbol", sym).Msg("Summary unavailable")
		}
		return nil, nil
	}
	return s, nil
}
