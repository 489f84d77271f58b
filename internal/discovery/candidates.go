// Package discovery builds the run's candidate universe from upstream listings,
// prior outputs and a static seed list.
package discovery

import (
	"strings"

	"github.com/sawpanic/valuescan/internal/models"
)

// CandidateSet is an insertion-ordered, symbol-deduplicated candidate collection.
type CandidateSet struct {
	order []string
	items map[string]*models.Candidate
}

// NewCandidateSet creates an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{items: make(map[string]*models.Candidate)}
}

// Add inserts c or, when the symbol is already present, fills in listing
// metadata the existing entry lacks. It reports whether the symbol was new.
func (s *CandidateSet) Add(c models.Candidate) bool {
	c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
	if c.Symbol == "" {
		return false
	}

	if existing, ok := s.items[c.Symbol]; ok {
		if c.HasMeta && !c.Listing.Empty() && (!existing.HasMeta || existing.Listing.Empty()) {
			existing.Listing = c.Listing
			existing.HasMeta = true
		}
		return false
	}

	s.items[c.Symbol] = &c
	s.order = append(s.order, c.Symbol)
	return true
}

// Len returns the number of distinct symbols.
func (s *CandidateSet) Len() int { return len(s.order) }

// Get returns the candidate for symbol.
func (s *CandidateSet) Get(symbol string) (models.Candidate, bool) {
	c, ok := s.items[strings.ToUpper(symbol)]
	if !ok {
		return models.Candidate{}, false
	}
	return *c, true
}

// Symbols returns the symbols in insertion order.
func (s *CandidateSet) Symbols() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Candidates returns copies of every candidate in insertion order.
func (s *CandidateSet) Candidates() []models.Candidate {
	out := make([]models.Candidate, 0, len(s.order))
	for _, sym := range s.order {
		out = append(out, *s.items[sym])
	}
	return out
}

// WithMeta returns the candidates whose source supplied listing metadata, in
// insertion order.
func (s *CandidateSet) WithMeta() []models.Candidate {
	var out []models.Candidate
	for _, sym := range s.order {
		if c := s.items[sym]; c.HasMeta {
			out = append(out, *c)
		}
	}
	return out
}

// FromQuote converts a listing quote into a candidate carrying its metadata.
// The exchange code stands in for a missing full exchange name.
func FromQuote(q models.LightQuote, source models.Provenance) models.Candidate {
	name := q.FullExchangeName
	if name == "" {
		name = q.Exchange
	}
	return models.Candidate{
		Symbol: q.Symbol,
		Listing: models.Listing{
			ExchangeName: strings.ToLower(name),
			ExchangeCode: strings.ToUpper(q.Exchange),
			Price:        q.RegularMarketPrice,
		},
		Source:  source,
		HasMeta: true,
	}
}
