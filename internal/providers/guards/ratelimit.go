package guards

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SleepFunc suspends the caller for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pacer owns the process-wide fetch state: scaled tunables and the
// consecutive-failure counter shared by every call kind.
type Pacer struct {
	tunables  Tunables
	sleep     SleepFunc
	telemetry *Telemetry

	mu       sync.Mutex
	rnd      *rand.Rand
	failures int
}

// PacerOption configures a Pacer.
type PacerOption func(*Pacer)

// WithSleep replaces the sleep implementation.
func WithSleep(sleep SleepFunc) PacerOption {
	return func(p *Pacer) { p.sleep = sleep }
}

// WithRand replaces the random source used for jitter and backoff noise.
func WithRand(rnd *rand.Rand) PacerOption {
	return func(p *Pacer) { p.rnd = rnd }
}

// WithTelemetry records cooldowns.
func WithTelemetry(t *Telemetry) PacerOption {
	return func(p *Pacer) { p.telemetry = t }
}

// NewPacer creates a pacer for already-scaled tunables.
func NewPacer(tunables Tunables, opts ...PacerOption) *Pacer {
	p := &Pacer{
		tunables: tunables,
		sleep:    ContextSleep,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tunables returns the scaled tunables in force.
func (p *Pacer) Tunables() Tunables { return p.tunables }

// Int63n returns a pseudo-random value in [0,n).
func (p *Pacer) Int63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Int63n(n)
}

// Jitter sleeps a random duration in [JitterMin, JitterMax].
func (p *Pacer) Jitter(ctx context.Context) error {
	lo, hi := p.tunables.JitterMin.Milliseconds(), p.tunables.JitterMax.Milliseconds()
	if hi < lo {
		hi = lo
	}
	ms := lo + p.Int63n(hi-lo+1)
	if ms <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, time.Duration(ms)*time.Millisecond)
}

// Sleep suspends for d using the configured sleep.
func (p *Pacer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, d)
}

// Failures returns the current consecutive-failure count.
func (p *Pacer) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures
}

// RecordSuccess resets the consecutive-failure count.
func (p *Pacer) RecordSuccess() {
	p.mu.Lock()
	p.failures = 0
	p.mu.Unlock()
}

// RecordFailure bumps the consecutive-failure count. Reaching the threshold
// triggers a cooldown sleep after which the count restarts at zero.
func (p *Pacer) RecordFailure(ctx context.Context) error {
	p.mu.Lock()
	p.failures++
	failures := p.failures
	cooling := failures >= p.tunables.CooldownThreshold
	if cooling {
		p.failures = 0
	}
	p.mu.Unlock()

	if !cooling {
		return nil
	}

	log.Warn().
		Int("consecutive_failures", failures).
		Int("threshold", p.tunables.CooldownThreshold).
		Dur("cooldown", p.tunables.Cooldown).
		Msg("Consecutive failure threshold reached, cooling down")
	if p.telemetry != nil {
		p.telemetry.RecordCooldown()
	}
	return p.Sleep(ctx, p.tunables.Cooldown)
}
