package config

import (
	"fmt"
	"time"

	"github.com/sawpanic/valuescan/internal/providers/guards"
)

// PacingConfig holds the large-run base values of the pacing tunables. They
// are scaled down by target size at startup.
type PacingConfig struct {
	JitterMinMS       int `yaml:"jitter_min_ms"`
	JitterMaxMS       int `yaml:"jitter_max_ms"`
	BackoffMaxMS      int `yaml:"backoff_max_ms"`
	CooldownThreshold int `yaml:"cooldown_threshold"` // Consecutive failures before a cooldown
	CooldownMS        int `yaml:"cooldown_ms"`
	SymbolTimeoutMS   int `yaml:"symbol_timeout_ms"` // Soft cap on one symbol's live fetch
}

// Validate ensures pacing configuration is valid
func (p *PacingConfig) Validate() error {
	if p.JitterMinMS < 0 {
		return fmt.Errorf("jitter_min_ms cannot be negative, got %d", p.JitterMinMS)
	}
	if p.JitterMaxMS < p.JitterMinMS {
		return fmt.Errorf("jitter_max_ms (%d) must be >= jitter_min_ms (%d)", p.JitterMaxMS, p.JitterMinMS)
	}
	if p.BackoffMaxMS <= 0 {
		return fmt.Errorf("backoff_max_ms must be positive, got %d", p.BackoffMaxMS)
	}
	if p.CooldownThreshold <= 0 {
		return fmt.Errorf("cooldown_threshold must be positive, got %d", p.CooldownThreshold)
	}
	if p.CooldownMS < 0 {
		return fmt.Errorf("cooldown_ms cannot be negative, got %d", p.CooldownMS)
	}
	if p.SymbolTimeoutMS <= 0 {
		return fmt.Errorf("symbol_timeout_ms must be positive, got %d", p.SymbolTimeoutMS)
	}
	return nil
}

// Tunables returns the unscaled pacing tunables.
func (p *PacingConfig) Tunables() guards.Tunables {
	return guards.Tunables{
		JitterMin:         time.Duration(p.JitterMinMS) * time.Millisecond,
		JitterMax:         time.Duration(p.JitterMaxMS) * time.Millisecond,
		BackoffMax:        time.Duration(p.BackoffMaxMS) * time.Millisecond,
		CooldownThreshold: p.CooldownThreshold,
		Cooldown:          time.Duration(p.CooldownMS) * time.Millisecond,
	}
}

// GetSymbolTimeout returns the per-symbol timeout as a time.Duration
func (p *PacingConfig) GetSymbolTimeout() time.Duration {
	return time.Duration(p.SymbolTimeoutMS) * time.Millisecond
}
