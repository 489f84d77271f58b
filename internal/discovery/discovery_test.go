package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/providers/guards"
)

type countingPacer struct{ n int }

func (p *countingPacer) Jitter(ctx context.Context) error {
	p.n++
	return ctx.Err()
}

type fakeLister struct {
	pages       map[string][][]models.LightQuote
	failScreens map[string]bool
	trending    []models.LightQuote
	trendingErr error
	calls       map[string]int
}

func (f *fakeLister) Screener(_ context.Context, id string, offset, count int) ([]models.LightQuote, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[id]++
	if f.failScreens[id] {
		return nil, errors.New("screen unavailable")
	}
	page := offset / count
	if page < len(f.pages[id]) {
		return f.pages[id][page], nil
	}
	return nil, nil
}

func (f *fakeLister) Trending(context.Context, string) ([]models.LightQuote, error) {
	return f.trending, f.trendingErr
}

func quote(sym, exchange, code string, price float64) models.LightQuote {
	return models.LightQuote{Symbol: sym, FullExchangeName: exchange, Exchange: code, RegularMarketPrice: models.Float(price)}
}

func TestCandidateSet_DedupAndMetadataFill(t *testing.T) {
	set := NewCandidateSet()
	assert.True(t, set.Add(models.Candidate{Symbol: "aaa", Source: models.SourceSalvage}))
	assert.False(t, set.Add(FromQuote(quote("AAA", "NasdaqGS", "NMS", 10), models.SourceScreen)))
	assert.False(t, set.Add(FromQuote(quote("AAA", "NasdaqCM", "NCM", 99), models.SourceTrending)))
	assert.False(t, set.Add(models.Candidate{Symbol: " "}))

	require.Equal(t, 1, set.Len())
	c, ok := set.Get("AAA")
	require.True(t, ok)
	assert.Equal(t, models.SourceSalvage, c.Source)
	assert.True(t, c.HasMeta)
	assert.Equal(t, "nasdaqgs", c.Listing.ExchangeName)
	assert.Equal(t, 10.0, *c.Listing.Price)
	assert.Len(t, set.WithMeta(), 1)
}

func TestScreenSource_AdmitsNasdaqOnly(t *testing.T) {
	lister := &fakeLister{pages: map[string][][]models.LightQuote{
		"most_actives": {
			{quote("AAA", "NasdaqGS", "NMS", 10), quote("BBB", "NYSE", "NYQ", 50)},
			{quote("CCC", "NasdaqCM", "NCM", 3)},
		},
	}}
	pacer := &countingPacer{}
	src := NewScreenSource(lister, pacer, nil, []string{"most_actives"}, 3)

	set := NewCandidateSet()
	require.NoError(t, src.Discover(context.Background(), set))

	assert.Equal(t, []string{"AAA", "CCC"}, set.Symbols())
	assert.Equal(t, 3, lister.calls["most_actives"])
	assert.Equal(t, 3, pacer.n)
}

func TestScreenSource_BreakerStopsDeadScreen(t *testing.T) {
	lister := &fakeLister{
		failScreens: map[string]bool{"day_losers": true},
		pages: map[string][][]models.LightQuote{
			"day_gainers": {{quote("AAA", "NasdaqGS", "NMS", 10)}},
		},
	}
	src := NewScreenSource(lister, &countingPacer{}, guards.NewPageBreakers(3), []string{"day_losers", "day_gainers"}, 10)

	set := NewCandidateSet()
	require.NoError(t, src.Discover(context.Background(), set))

	assert.Equal(t, 3, lister.calls["day_losers"])
	assert.Equal(t, 10, lister.calls["day_gainers"])
	assert.Equal(t, []string{"AAA"}, set.Symbols())

	// A second pass over the same breakers never touches the tripped screen.
	require.NoError(t, src.Discover(context.Background(), NewCandidateSet()))
	assert.Equal(t, 3, lister.calls["day_losers"])
	assert.Equal(t, 20, lister.calls["day_gainers"])
}

func TestTrendingSource(t *testing.T) {
	lister := &fakeLister{trending: []models.LightQuote{
		{Symbol: "NEW"},
		quote("AAA", "NasdaqGS", "NMS", 10),
		quote("BBB", "NYSE", "NYQ", 50),
	}}
	set := NewCandidateSet()
	require.NoError(t, NewTrendingSource(lister, &countingPacer{}, "").Discover(context.Background(), set))
	assert.Equal(t, []string{"NEW", "AAA"}, set.Symbols())
}

func TestSalvageSource_StopsAtTopRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Comprehensive_10_Stock_Analysis.csv")
	content := "Company Name,Ticker,Composite\n" +
		"\"Alpha, Inc.\",AAA,0.5\n" +
		"Beta,BBB,0.4\n" +
		"Top Ships Inc.,TOPS,0.3\n" +
		"TOP Financial Group,TOP,0.2\n" +
		"Top_Composite,AAA,BBB\n" +
		"Gamma,CCC,0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set := NewCandidateSet()
	src := NewSalvageSource(path, filepath.Join(dir, "missing.csv"))
	require.NoError(t, src.Discover(context.Background(), set))
	assert.Equal(t, []string{"AAA", "BBB", "TOPS", "TOP"}, set.Symbols())

	c, _ := set.Get("AAA")
	assert.Equal(t, models.SourceSalvage, c.Source)
}

func TestSeedSource_OnlyBelowFloor(t *testing.T) {
	set := NewCandidateSet()
	set.Add(models.Candidate{Symbol: "AAPL"})
	require.NoError(t, NewSeedSource(500).Discover(context.Background(), set))
	assert.Equal(t, len(SeedSymbols), set.Len())

	full := NewCandidateSet()
	full.Add(models.Candidate{Symbol: "ZZZ"})
	require.NoError(t, NewSeedSource(1).Discover(context.Background(), full))
	assert.Equal(t, 1, full.Len())
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Discover(context.Context, *CandidateSet) error {
	return errors.New("listing down")
}

func TestAggregator_IsolatesSourceFailures(t *testing.T) {
	lister := &fakeLister{trending: []models.LightQuote{quote("AAA", "NasdaqGS", "NMS", 10)}}
	agg := NewAggregator(failingSource{}, NewTrendingSource(lister, &countingPacer{}, "US"))

	set, err := agg.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, set.Symbols())
}

func TestManualSet(t *testing.T) {
	set := ManualSet([]string{"aaa", "BBB", "AAA"})
	assert.Equal(t, []string{"AAA", "BBB", "TOPS", "TOP"}, set.Symbols())
	c, _ := set.Get("BBB")
	assert.Equal(t, models.SourceManual, c.Source)
	assert.False(t, c.HasMeta)
}
