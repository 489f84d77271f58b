package guards

import (
	"math"
	"time"
)

const (
	smallRunTarget = 5
	largeRunTarget = 200
)

// Tunables are the pacing knobs shared by every upstream call of a run.
type Tunables struct {
	JitterMin         time.Duration
	JitterMax         time.Duration
	BackoffMax        time.Duration
	CooldownThreshold int
	Cooldown          time.Duration
}

// DefaultTunables returns the large-run profile.
func DefaultTunables() Tunables {
	return Tunables{
		JitterMin:         300 * time.Millisecond,
		JitterMax:         450 * time.Millisecond,
		BackoffMax:        6000 * time.Millisecond,
		CooldownThreshold: 4,
		Cooldown:          8000 * time.Millisecond,
	}
}

// ScaleFactor maps a target selection size onto [0,1]: 0 at 5 symbols, 1 at 200.
func ScaleFactor(target int) float64 {
	if target < smallRunTarget {
		target = smallRunTarget
	}
	if target > largeRunTarget {
		target = largeRunTarget
	}
	return float64(target-smallRunTarget) / float64(largeRunTarget-smallRunTarget)
}

// Scale interpolates t between the small-run and large-run profiles. The
// result is computed once per run.
func (t Tunables) Scale(target int) Tunables {
	s := ScaleFactor(target)
	threshold := int(math.Round(float64(t.CooldownThreshold) * (0.6 + 0.4*s)))
	if threshold < 2 {
		threshold = 2
	}
	return Tunables{
		JitterMin:         scaleMillis(t.JitterMin, 0.3+0.7*s),
		JitterMax:         scaleMillis(t.JitterMax, 0.3+0.7*s),
		BackoffMax:        scaleMillis(t.BackoffMax, 0.4+0.6*s),
		CooldownThreshold: threshold,
		Cooldown:          scaleMillis(t.Cooldown, 0.5+0.5*s),
	}
}

func scaleMillis(d time.Duration, factor float64) time.Duration {
	// the epsilon keeps products like 300*0.3 from flooring to 89
	ms := math.Floor(float64(d.Milliseconds())*factor + 1e-9)
	return time.Duration(ms) * time.Millisecond
}
