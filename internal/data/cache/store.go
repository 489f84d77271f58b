package cache

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/models"
)

const (
	QuotesFile    = "quotes.json"
	SummariesFile = "quoteSummary.json"
)

// Store holds the light-quote and full-summary snapshots backed by one directory.
type Store struct {
	Quotes    *Snapshot[*models.LightQuote]
	Summaries *Snapshot[*models.Summary]
	dir       string
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used for freshness checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// Open creates a store rooted at dir and hydrates it from disk. Unreadable or
// corrupt files are logged and treated as empty.
func Open(dir string, ttl time.Duration, opts ...Option) *Store {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		Quotes: NewSnapshot("quotes", ttl, o.now, func(q *models.LightQuote) bool {
			return q != nil
		}),
		Summaries: NewSnapshot("quoteSummary", ttl, o.now, func(q *models.Summary) bool {
			return q != nil
		}),
		dir: dir,
	}

	if err := s.Quotes.Load(s.path(QuotesFile)); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Quote cache unreadable, starting empty")
	}
	if err := s.Summaries.Load(s.path(SummariesFile)); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Summary cache unreadable, starting empty")
	}

	log.Info().
		Int("quotes", s.Quotes.Len()).
		Int("summaries", s.Summaries.Len()).
		Str("dir", dir).
		Msg("Hydrated snapshot cache")

	return s
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Flush persists both snapshots wholesale.
func (s *Store) Flush() error {
	return errors.Join(
		s.Quotes.Save(s.path(QuotesFile)),
		s.Summaries.Save(s.path(SummariesFile)),
	)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
