package guards

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	slept []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.slept = append(r.slept, d)
	return ctx.Err()
}

func newTestGuard(t *testing.T, tunables Tunables) (*Guard, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	tel := NewTelemetry()
	pacer := NewPacer(tunables,
		WithSleep(rec.sleep),
		WithRand(rand.New(rand.NewSource(1))),
		WithTelemetry(tel),
	)
	return NewGuard(pacer, tel, nil), rec
}

func noJitter() Tunables {
	return Tunables{BackoffMax: 6 * time.Second, CooldownThreshold: 10, Cooldown: 8 * time.Second}
}

func TestScale(t *testing.T) {
	base := DefaultTunables()

	large := base.Scale(200)
	assert.Equal(t, base, large)
	assert.Equal(t, large, base.Scale(1000))

	small := base.Scale(5)
	assert.Equal(t, 90*time.Millisecond, small.JitterMin)
	assert.Equal(t, 135*time.Millisecond, small.JitterMax)
	assert.Equal(t, 2400*time.Millisecond, small.BackoffMax)
	assert.Equal(t, 2, small.CooldownThreshold)
	assert.Equal(t, 4000*time.Millisecond, small.Cooldown)
	assert.Equal(t, small, base.Scale(1))
}

func TestScaleFactor(t *testing.T) {
	assert.Equal(t, 0.0, ScaleFactor(5))
	assert.Equal(t, 1.0, ScaleFactor(200))
	assert.InDelta(t, 97.0/195.0, ScaleFactor(102), 1e-9)
}

func TestQuadraticBackoff(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, QuadraticBackoff(1, 0, 6*time.Second, nil))
	assert.Equal(t, 2250*time.Millisecond, QuadraticBackoff(3, 0, 6*time.Second, nil))
	assert.Equal(t, 2000*time.Millisecond, QuadraticBackoff(3, 0, 2*time.Second, nil))
}

func TestDoublingBackoff(t *testing.T) {
	zero := func(int64) int64 { return 0 }
	top := func(n int64) int64 { return n - 1 }

	assert.Equal(t, 300*time.Millisecond, DoublingBackoff(1, 0, 6*time.Second, zero))
	assert.Equal(t, 449*time.Millisecond, DoublingBackoff(1, 0, 6*time.Second, top))
	assert.Equal(t, 800*time.Millisecond, DoublingBackoff(2, 400*time.Millisecond, 6*time.Second, zero))
	assert.Equal(t, 1*time.Second, DoublingBackoff(4, 2*time.Second, time.Second, zero))
}

func TestExecute_SummaryBackoffSchedule(t *testing.T) {
	g, rec := newTestGuard(t, noJitter())

	calls := 0
	v, err := Execute(context.Background(), g, SummaryPolicy(), "AAA", func(context.Context) (string, error) {
		calls++
		if calls <= 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second, 2250 * time.Millisecond}, rec.slept)
	assert.Equal(t, 0, g.Pacer().Failures())
}

func TestExecute_HardFailurePropagates(t *testing.T) {
	g, _ := newTestGuard(t, noJitter())
	upstream := errors.New("bad gateway")

	calls := 0
	_, err := Execute(context.Background(), g, SummaryPolicy(), "AAA", func(context.Context) (*struct{}, error) {
		calls++
		return nil, upstream
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, MaxAttempts, calls)

	counts := g.Telemetry().Counts()
	assert.Equal(t, 5, counts.Calls)
	assert.Equal(t, 5, counts.Failures)
	assert.Equal(t, 1, counts.Exhausted)
}

func TestExecute_SoftFailureReturnsZero(t *testing.T) {
	g, _ := newTestGuard(t, noJitter())

	v, err := Execute(context.Background(), g, QuotePolicy(), "AAA", func(context.Context) (*int, error) {
		return nil, errors.New("nope")
	})

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestExecute_ClassificationOnlyAffectsMetrics(t *testing.T) {
	rec := &sleepRecorder{}
	tel := NewTelemetry()
	pacer := NewPacer(noJitter(), WithSleep(rec.sleep), WithRand(rand.New(rand.NewSource(1))))
	g := NewGuard(pacer, tel, func(error) string { return ClassMarkup })

	calls := 0
	_, err := Execute(context.Background(), g, SummaryPolicy(), "AAA", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("<!DOCTYPE html>")
	})

	require.Error(t, err)
	assert.Equal(t, MaxAttempts, calls)
	assert.Equal(t, 5, tel.FailuresByClass("summary", ClassMarkup))
	assert.Equal(t, 0, tel.FailuresByClass("summary", ClassStructured))
}

func TestExecute_CooldownAtThreshold(t *testing.T) {
	tunables := noJitter()
	tunables.CooldownThreshold = 2
	tunables.Cooldown = 7 * time.Second
	g, rec := newTestGuard(t, tunables)

	_, err := Execute(context.Background(), g, SummaryPolicy(), "AAA", func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)

	cooldowns := 0
	for _, d := range rec.slept {
		if d == 7*time.Second {
			cooldowns++
		}
	}
	// five failures: cooldown after the second and the fourth
	assert.Equal(t, 2, cooldowns)
	assert.Equal(t, 2, g.Telemetry().Counts().Cooldowns)
	assert.Equal(t, 1, g.Pacer().Failures())
}

func TestExecute_FailuresSharedAcrossCalls(t *testing.T) {
	tunables := noJitter()
	tunables.CooldownThreshold = 3
	g, _ := newTestGuard(t, tunables)

	fail := func(context.Context) (*int, error) { return nil, errors.New("x") }
	policy := QuotePolicy()
	policy.MaxAttempts = 1

	_, _ = Execute(context.Background(), g, policy, "A", fail)
	_, _ = Execute(context.Background(), g, policy, "B", fail)
	assert.Equal(t, 2, g.Pacer().Failures())

	_, err := Execute(context.Background(), g, policy, "C", func(context.Context) (*int, error) { return new(int), nil })
	require.NoError(t, err)
	assert.Equal(t, 0, g.Pacer().Failures())
}

func TestExecute_JitterWithinBounds(t *testing.T) {
	tunables := noJitter()
	tunables.JitterMin = 100 * time.Millisecond
	tunables.JitterMax = 120 * time.Millisecond
	g, rec := newTestGuard(t, tunables)

	for i := 0; i < 20; i++ {
		_, err := Execute(context.Background(), g, QuotePolicy(), "A", func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}
	require.Len(t, rec.slept, 20)
	for _, d := range rec.slept {
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	g, _ := newTestGuard(t, noJitter())
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Execute(ctx, g, SummaryPolicy(), "AAA", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("interrupted")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPageBreakers_TripAfterConsecutiveFailures(t *testing.T) {
	pb := NewPageBreakers(3)
	fail := func() (interface{}, error) { return nil, errors.New("page failed") }

	for i := 0; i < 3; i++ {
		_, err := pb.For("most_actives").Execute(fail)
		require.Error(t, err)
	}
	assert.True(t, pb.Open("most_actives"))
	assert.False(t, pb.Open("day_gainers"))
}
