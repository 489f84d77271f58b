package discovery

import (
	"context"
	"strings"

	"github.com/sawpanic/valuescan/internal/models"
)

// TrendingSource admits trending symbols that are NASDAQ-listed or carry no
// exchange name at all.
type TrendingSource struct {
	lister Lister
	pacer  Pacer
	region string
}

func NewTrendingSource(lister Lister, pacer Pacer, region string) *TrendingSource {
	if region == "" {
		region = "US"
	}
	return &TrendingSource{lister: lister, pacer: pacer, region: region}
}

func (s *TrendingSource) Name() string { return "trending" }

func (s *TrendingSource) Discover(ctx context.Context, set *CandidateSet) error {
	quotes, err := s.lister.Trending(ctx, s.region)
	// the pause follows the call whether or not it succeeded
	if jerr := s.pacer.Jitter(ctx); jerr != nil && err == nil {
		err = jerr
	}
	if err != nil {
		return err
	}

	for _, q := range quotes {
		c := FromQuote(q, models.SourceTrending)
		if c.Listing.ExchangeName != "" && !strings.Contains(c.Listing.ExchangeName, "nasdaq") {
			continue
		}
		set.Add(c)
	}
	return nil
}
