package discovery

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/providers/guards"
)

// DefaultScreens are the predefined screens paged during discovery.
var DefaultScreens = []string{
	"most_actives",
	"day_gainers",
	"day_losers",
	"undervalued_large_caps",
	"undervalued_growth_stocks",
	"small_cap_gainers",
	"aggressive_small_caps",
	"most_shorted_stocks",
	"portfolio_anchors",
	"solid_large_growth_funds",
	"solid_midcap_growth_funds",
}

const (
	ScreenPageSize        = 100
	DefaultMaxScreenPages = 10
)

// ScreenSource pages through predefined screens and admits NASDAQ listings.
type ScreenSource struct {
	lister   Lister
	pacer    Pacer
	breakers *guards.PageBreakers
	screens  []string
	maxPages int
}

// NewScreenSource creates a screen source. maxPages <= 0 uses the default.
func NewScreenSource(lister Lister, pacer Pacer, breakers *guards.PageBreakers, screens []string, maxPages int) *ScreenSource {
	if len(screens) == 0 {
		screens = DefaultScreens
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxScreenPages
	}
	if breakers == nil {
		breakers = guards.NewPageBreakers(3)
	}
	return &ScreenSource{lister: lister, pacer: pacer, breakers: breakers, screens: screens, maxPages: maxPages}
}

func (s *ScreenSource) Name() string { return "screens" }

func (s *ScreenSource) Discover(ctx context.Context, set *CandidateSet) error {
	for _, id := range s.screens {
		if s.breakers.Open(id) {
			log.Debug().Str("screen", id).Msg("Screen breaker open, skipping screen")
			continue
		}
		cb := s.breakers.For(id)
		for page := 0; page < s.maxPages; page++ {
			offset := page * ScreenPageSize
			out, err := cb.Execute(func() (interface{}, error) {
				return s.lister.Screener(ctx, id, offset, ScreenPageSize)
			})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, gobreaker.ErrOpenState) {
				log.Warn().Str("screen", id).Int("offset", offset).Msg("Screen breaker open, skipping remaining pages")
				break
			}
			if err != nil {
				log.Warn().Err(err).Str("screen", id).Int("offset", offset).Msg("Screen page failed")
			} else {
				quotes, _ := out.([]models.LightQuote)
				for _, q := range quotes {
					c := FromQuote(q, models.SourceScreen)
					if strings.Contains(c.Listing.ExchangeName, "nasdaq") {
						set.Add(c)
					}
				}
			}
			if err := s.pacer.Jitter(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
