// Package guards paces and retries upstream calls on behalf of the fetch client.
package guards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExhausted marks a hard-failing call that used all of its attempts.
var ErrExhausted = errors.New("retry attempts exhausted")

// Error classes reported by a Classifier.
const (
	ClassMarkup     = "markup"
	ClassStructured = "structured"
)

// Classifier labels an upstream error for logging and metrics.
type Classifier func(error) string

// Guard couples the shared pacer with telemetry and an error classifier.
type Guard struct {
	pacer     *Pacer
	telemetry *Telemetry
	classify  Classifier
}

// NewGuard creates a guard. A nil classifier labels every error structured.
func NewGuard(pacer *Pacer, telemetry *Telemetry, classify Classifier) *Guard {
	if classify == nil {
		classify = func(error) string { return ClassStructured }
	}
	if telemetry == nil {
		telemetry = NewTelemetry()
	}
	return &Guard{pacer: pacer, telemetry: telemetry, classify: classify}
}

// Pacer returns the shared pacer.
func (g *Guard) Pacer() *Pacer { return g.pacer }

// Telemetry returns the guard's counters.
func (g *Guard) Telemetry() *Telemetry { return g.telemetry }

// Execute runs call under policy. Before each try it sleeps the pending backoff
// (retries only) and then a jitter. Error classification feeds logs and metrics
// but never changes the retry schedule. Context cancellation is returned as is.
func Execute[T any](ctx context.Context, g *Guard, policy RetryPolicy, key string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}

	var delay time.Duration
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := g.pacer.Sleep(ctx, delay); err != nil {
			return zero, err
		}
		if err := g.pacer.Jitter(ctx); err != nil {
			return zero, err
		}

		g.telemetry.RecordCall(policy.Name)
		v, err := call(ctx)
		if err == nil {
			g.pacer.RecordSuccess()
			g.telemetry.RecordSuccess(policy.Name)
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		lastErr = err
		class := g.classify(err)
		g.telemetry.RecordFailure(policy.Name, class)
		log.Warn().
			Err(err).
			Str("kind", policy.Name).
			Str("key", key).
			Str("class", class).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("Upstream call failed")

		if err := g.pacer.RecordFailure(ctx); err != nil {
			return zero, err
		}
		if policy.Backoff != nil {
			delay = policy.Backoff(attempt, delay, g.pacer.Tunables().BackoffMax, g.pacer.Int63n)
		}
	}

	g.telemetry.RecordExhausted(policy.Name)
	if policy.SoftFail {
		log.Debug().Str("kind", policy.Name).Str("key", key).Msg("Attempts exhausted, returning no data")
		return zero, nil
	}
	return zero, fmt.Errorf("%s %s: %w: %w", policy.Name, key, ErrExhausted, lastErr)
}
