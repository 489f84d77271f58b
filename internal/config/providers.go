package config

import (
	"fmt"
	"net/url"
	"time"
)

// ProviderConfig is the upstream transport configuration.
type ProviderConfig struct {
	BaseURL   string  `yaml:"base_url"`   // JSON API host
	CookieURL string  `yaml:"cookie_url"` // Session cookie bootstrap
	RPS       float64 `yaml:"rps"`        // Request ceiling, 0 disables
	TimeoutMS int     `yaml:"timeout_ms"` // Per-request HTTP timeout
	UserAgent string  `yaml:"user_agent"`
}

// Validate ensures the provider configuration is usable.
func (p *ProviderConfig) Validate() error {
	if _, err := url.ParseRequestURI(p.BaseURL); err != nil {
		return fmt.Errorf("base_url %q: %w", p.BaseURL, err)
	}
	if _, err := url.ParseRequestURI(p.CookieURL); err != nil {
		return fmt.Errorf("cookie_url %q: %w", p.CookieURL, err)
	}
	if p.RPS < 0 {
		return fmt.Errorf("rps cannot be negative, got %f", p.RPS)
	}
	if p.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", p.TimeoutMS)
	}
	if p.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}
	return nil
}

// GetRequestTimeout returns the request timeout as a time.Duration
func (p *ProviderConfig) GetRequestTimeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// CacheConfig locates the snapshot cache.
type CacheConfig struct {
	Dir      string  `yaml:"dir"`
	TTLHours float64 `yaml:"ttl_hours"`
}

// Validate ensures the cache configuration is usable.
func (c *CacheConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir cannot be empty")
	}
	if c.TTLHours <= 0 {
		return fmt.Errorf("ttl_hours must be positive, got %f", c.TTLHours)
	}
	return nil
}

// GetTTL returns the freshness window as a time.Duration
func (c *CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTLHours * float64(time.Hour))
}
