// Package config loads and validates run configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/valuescan/internal/discovery"
	"github.com/sawpanic/valuescan/internal/providers/yahoo"
	"github.com/sawpanic/valuescan/internal/scoring"
)

// MaxManualTickers caps an explicit ticker list.
const MaxManualTickers = 50

// LegacyReportPath is the historical report salvaged alongside the current target's.
const LegacyReportPath = "Comprehensive_153_Stock_Analysis.csv"

// Config is the complete run configuration.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
	Pacing    PacingConfig    `yaml:"pacing"`
	Output    OutputConfig    `yaml:"output"`
}

// RunConfig sizes and scopes the selection.
type RunConfig struct {
	Target        int      `yaml:"target"`
	MinPrice      float64  `yaml:"min_price"`
	Strict        bool     `yaml:"strict"`
	TopRankCount  int      `yaml:"top_rank_count"`
	ManualTickers []string `yaml:"manual_tickers"`
	SkipTickers   []string `yaml:"skip_tickers"`
	Sectors       []string `yaml:"sectors"`
	Industries    []string `yaml:"industries"`
}

// DiscoveryConfig toggles and bounds the candidate sources.
type DiscoveryConfig struct {
	Screens        []string `yaml:"screens"`
	MaxScreenPages int      `yaml:"max_screen_pages"`
	TrendingRegion string   `yaml:"trending_region"`
	Salvage        bool     `yaml:"salvage"`
	SalvagePaths   []string `yaml:"salvage_paths"`
	Seed           bool     `yaml:"seed"`
	SeedFloor      int      `yaml:"seed_floor"`
}

// ScoringConfig holds composite weights and the minimum-fields policy.
type ScoringConfig struct {
	Weights scoring.Weights `yaml:"weights"`
	Policy  scoring.Policy  `yaml:",inline"`
}

// OutputConfig controls where results and progress go.
type OutputConfig struct {
	CSVPath      string `yaml:"csv_path"`
	EmitProgress bool   `yaml:"emit_progress"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Target:       200,
			MinPrice:     5.00,
			TopRankCount: 10,
		},
		Discovery: DiscoveryConfig{
			Screens:        append([]string(nil), discovery.DefaultScreens...),
			MaxScreenPages: discovery.DefaultMaxScreenPages,
			TrendingRegion: "US",
			Salvage:        true,
			Seed:           true,
			SeedFloor:      discovery.DefaultSeedFloor,
		},
		Scoring: ScoringConfig{
			Weights: scoring.DefaultWeights(),
			Policy:  scoring.Policy{MinFields: 4},
		},
		Provider: ProviderConfig{
			BaseURL:   yahoo.DefaultBaseURL,
			CookieURL: yahoo.DefaultCookieURL,
			RPS:       yahoo.DefaultRateLimit,
			TimeoutMS: int(yahoo.DefaultTimeout.Milliseconds()),
			UserAgent: yahoo.DefaultUserAgent,
		},
		Cache: CacheConfig{
			Dir:      "./cache",
			TTLHours: 24,
		},
		Pacing: PacingConfig{
			JitterMinMS:       300,
			JitterMaxMS:       450,
			BackoffMaxMS:      6000,
			CooldownThreshold: 4,
			CooldownMS:        8000,
			SymbolTimeoutMS:   45000,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate ensures the configuration is valid and consistent
func (c *Config) Validate() error {
	if c.Run.Target <= 0 {
		return fmt.Errorf("run target must be positive, got %d", c.Run.Target)
	}
	if c.Run.MinPrice < 0 {
		return fmt.Errorf("run min_price cannot be negative, got %f", c.Run.MinPrice)
	}
	if c.Run.TopRankCount <= 0 {
		return fmt.Errorf("run top_rank_count must be positive, got %d", c.Run.TopRankCount)
	}
	if c.Discovery.MaxScreenPages <= 0 {
		return fmt.Errorf("discovery max_screen_pages must be positive, got %d", c.Discovery.MaxScreenPages)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.Policy.MinFields < 0 || c.Scoring.Policy.MinFields > 6 {
		return fmt.Errorf("scoring min_fields must be between 0 and 6, got %d", c.Scoring.Policy.MinFields)
	}
	if err := c.Provider.Validate(); err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("pacing: %w", err)
	}
	return nil
}

// ManualList returns the manual tickers upper-cased, deduplicated and capped.
func (c *Config) ManualList() []string {
	return NormalizeTickers(c.Run.ManualTickers, MaxManualTickers)
}

// Manual reports whether an explicit ticker list replaces discovery.
func (c *Config) Manual() bool {
	return len(c.ManualList()) > 0
}

// CSVPath returns the report path, defaulting to the target-sized name.
func (c *Config) CSVPath() string {
	if c.Output.CSVPath != "" {
		return c.Output.CSVPath
	}
	return DefaultCSVPath(c.Run.Target)
}

// SalvageFiles returns the prior reports harvested during discovery.
func (c *Config) SalvageFiles() []string {
	if len(c.Discovery.SalvagePaths) > 0 {
		return c.Discovery.SalvagePaths
	}
	return []string{LegacyReportPath, DefaultCSVPath(c.Run.Target)}
}

// DefaultCSVPath names the report after the target size.
func DefaultCSVPath(target int) string {
	return fmt.Sprintf("Comprehensive_%d_Stock_Analysis.csv", target)
}

// NormalizeTickers trims, upper-cases and deduplicates, keeping at most max
// entries when max > 0.
func NormalizeTickers(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			sym := strings.ToUpper(strings.TrimSpace(part))
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			out = append(out, sym)
			if max > 0 && len(out) == max {
				return out
			}
		}
	}
	return out
}
