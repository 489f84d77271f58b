package discovery

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/models"
)

// Source contributes candidates to a set. A failing source never stops the others.
type Source interface {
	Name() string
	Discover(ctx context.Context, set *CandidateSet) error
}

// Lister is the upstream listing surface used by screen and trending sources.
type Lister interface {
	Screener(ctx context.Context, screenID string, offset, count int) ([]models.LightQuote, error)
	Trending(ctx context.Context, region string) ([]models.LightQuote, error)
}

// Pacer spaces out listing calls.
type Pacer interface {
	Jitter(ctx context.Context) error
}

// Aggregator runs sources in order over one candidate set.
type Aggregator struct {
	sources []Source
}

// NewAggregator creates an aggregator over sources.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Discover runs every source. Source errors are logged and skipped; only
// context cancellation is returned.
func (a *Aggregator) Discover(ctx context.Context) (*CandidateSet, error) {
	set := NewCandidateSet()
	for _, src := range a.sources {
		if err := ctx.Err(); err != nil {
			return set, err
		}

		start := time.Now()
		before := set.Len()
		if err := src.Discover(ctx, set); err != nil {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			log.Warn().Err(err).Str("source", src.Name()).Msg("Discovery source failed")
			continue
		}
		log.Info().
			Str("source", src.Name()).
			Int("added", set.Len()-before).
			Int("total", set.Len()).
			Dur("elapsed", time.Since(start)).
			Msg("Discovery source complete")
	}
	return set, nil
}

// ManualSet builds the candidate set for an explicit ticker list.
func ManualSet(symbols []string) *CandidateSet {
	set := NewCandidateSet()
	for _, sym := range symbols {
		set.Add(models.Candidate{Symbol: sym, Source: models.SourceManual})
	}
	return set
}
