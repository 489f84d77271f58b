package guards

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// PageBreakers hands out one breaker per paginated listing so a listing that
// keeps failing stops being paged for the rest of the run.
type PageBreakers struct {
	threshold uint32
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
}

// NewPageBreakers trips a listing's breaker after threshold consecutive page failures.
func NewPageBreakers(threshold uint32) *PageBreakers {
	if threshold == 0 {
		threshold = 3
	}
	return &PageBreakers{threshold: threshold, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// For returns the breaker for a listing, creating it on first use.
func (p *PageBreakers) For(name string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cb, ok := p.breakers[name]; ok {
		return cb
	}
	threshold := p.threshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		// A run is short; once open the listing stays open.
		Timeout: 24 * time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("listing", name).Str("from", from.String()).Str("to", to.String()).Msg("Listing breaker state change")
		},
	})
	p.breakers[name] = cb
	return cb
}

// Open reports whether the listing's breaker has tripped.
func (p *PageBreakers) Open(name string) bool {
	return p.For(name).State() == gobreaker.StateOpen
}
