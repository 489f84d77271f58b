package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestIsFresh_Boundaries(t *testing.T) {
	ttlHours := 24
	ttl := time.Duration(ttlHours) * time.Hour
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	window := int64(ttlHours) * 3600000

	assert.True(t, IsFresh(ts, time.UnixMilli(ts+window-1), ttl))
	assert.False(t, IsFresh(ts, time.UnixMilli(ts+window), ttl))
	assert.False(t, IsFresh(ts, time.UnixMilli(ts+window+1), ttl))
	assert.False(t, IsFresh(0, time.UnixMilli(ts), ttl))
}

func TestSnapshot_GetHonoursTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	snap := NewSnapshot[*models.LightQuote]("quotes", time.Hour, clock.Now, nil)

	snap.Put("AAA", &models.LightQuote{Symbol: "AAA"})
	got, ok := snap.Get("AAA")
	require.True(t, ok)
	assert.Equal(t, "AAA", got.Symbol)

	clock.t = clock.t.Add(time.Hour - time.Millisecond)
	_, ok = snap.Get("AAA")
	assert.True(t, ok)

	clock.t = clock.t.Add(2 * time.Millisecond)
	_, ok = snap.Get("AAA")
	assert.False(t, ok)

	fresh, stale := snap.Counts()
	assert.Equal(t, 0, fresh)
	assert.Equal(t, 1, stale)
}

func TestStore_FlushAndHydrate(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	store := Open(dir, 24*time.Hour, WithClock(clock.Now))
	store.Quotes.Put("AAA", &models.LightQuote{Symbol: "AAA", FullExchangeName: "NasdaqGS", RegularMarketPrice: models.Float(10)})
	store.Summaries.Put("AAA", &models.Summary{Price: models.PriceModule{Symbol: "AAA", LongName: "Alpha"}})
	require.NoError(t, store.Flush())

	assert.FileExists(t, filepath.Join(dir, QuotesFile))
	assert.FileExists(t, filepath.Join(dir, SummariesFile))

	reopened := Open(dir, 24*time.Hour, WithClock(clock.Now))
	q, ok := reopened.Quotes.Get("AAA")
	require.True(t, ok)
	assert.Equal(t, 10.0, *q.RegularMarketPrice)

	s, ok := reopened.Summaries.Get("AAA")
	require.True(t, ok)
	assert.Equal(t, "Alpha", s.DisplayName())
}

func TestStore_CorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, QuotesFile), []byte("{not json"), 0o644))

	store := Open(dir, time.Hour)
	assert.Equal(t, 0, store.Quotes.Len())
	assert.Equal(t, 0, store.Summaries.Len())
}

func TestStore_SkipsNullPayloads(t *testing.T) {
	dir := t.TempDir()
	payload := `{"AAA":{"ts":1700000000000,"data":null},"BBB":{"ts":1700000000000,"data":{"symbol":"BBB"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, QuotesFile), []byte(payload), 0o644))

	store := Open(dir, time.Hour)
	assert.Equal(t, []string{"BBB"}, store.Quotes.Symbols())
}
