package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sawpanic/valuescan/internal/application/pipeline"
	"github.com/sawpanic/valuescan/internal/config"
	"github.com/sawpanic/valuescan/internal/data/cache"
	"github.com/sawpanic/valuescan/internal/discovery"
	httpobs "github.com/sawpanic/valuescan/internal/interfaces/http"
	"github.com/sawpanic/valuescan/internal/progress"
	"github.com/sawpanic/valuescan/internal/providers"
	"github.com/sawpanic/valuescan/internal/providers/guards"
	"github.com/sawpanic/valuescan/internal/providers/yahoo"
	"github.com/sawpanic/valuescan/internal/report"
	"github.com/sawpanic/valuescan/internal/scoring"
	"github.com/sawpanic/valuescan/internal/selection"
)

// screenBreakerThreshold is the consecutive page failures that close off a screen.
const screenBreakerThreshold = 3

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, score and select NASDAQ equities",
		Long:  "Runs discovery, the eligibility and enrichment loop, scoring and selection, then writes the CSV report",
		RunE:  runScan,
	}

	f := cmd.Flags()
	f.Int("target", 200, "Final selection size")
	f.Float64("min-price", 5.0, "Minimum regular market price")
	f.Bool("strict", false, "Never pad the selection with unverified symbols")
	f.Int("top-rank-count", selection.DefaultTopK, "Symbols per Top-K row")
	f.Int("min-fields", 4, "Minimum composite inputs when --exclude-na is set")
	f.Bool("exclude-na", false, "Treat summaries with too few composite inputs as unscoreable")
	f.StringSlice("manual-tickers", nil, "Explicit ticker list, replaces discovery")
	f.StringSlice("skip-tickers", nil, "Tickers to skip")
	f.StringSlice("sectors", nil, "Allowed sectors")
	f.StringSlice("industries", nil, "Allowed industries")
	f.Bool("no-salvage", false, "Do not harvest tickers from earlier reports")
	f.Bool("no-seed", false, "Do not add the built-in seed list")
	f.Int("max-screen-pages", discovery.DefaultMaxScreenPages, "Pages fetched per predefined screen")
	f.Bool("emit-progress", false, "Write PROGRESS: {json} lines to stdout")
	f.String("csv", "", "Report path (default Comprehensive_<target>_Stock_Analysis.csv)")
	f.String("cache-dir", "", "Snapshot cache directory")
	f.Float64("ttl-hours", 0, "Snapshot freshness window in hours")
	f.String("metrics-addr", "", "Serve /health, /metrics and /status on this address")

	return cmd
}

// loadConfig reads --config and applies every explicitly set flag on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(f *pflag.FlagSet, cfg *config.Config) {
	f.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "target":
			cfg.Run.Target, _ = f.GetInt(fl.Name)
		case "min-price":
			cfg.Run.MinPrice, _ = f.GetFloat64(fl.Name)
		case "strict":
			cfg.Run.Strict, _ = f.GetBool(fl.Name)
		case "top-rank-count":
			cfg.Run.TopRankCount, _ = f.GetInt(fl.Name)
		case "min-fields":
			cfg.Scoring.Policy.MinFields, _ = f.GetInt(fl.Name)
		case "exclude-na":
			cfg.Scoring.Policy.ExcludeNA, _ = f.GetBool(fl.Name)
		case "manual-tickers":
			cfg.Run.ManualTickers, _ = f.GetStringSlice(fl.Name)
		case "skip-tickers":
			cfg.Run.SkipTickers, _ = f.GetStringSlice(fl.Name)
		case "sectors":
			cfg.Run.Sectors, _ = f.GetStringSlice(fl.Name)
		case "industries":
			cfg.Run.Industries, _ = f.GetStringSlice(fl.Name)
		case "no-salvage":
			off, _ := f.GetBool(fl.Name)
			cfg.Discovery.Salvage = !off
		case "no-seed":
			off, _ := f.GetBool(fl.Name)
			cfg.Discovery.Seed = !off
		case "max-screen-pages":
			cfg.Discovery.MaxScreenPages, _ = f.GetInt(fl.Name)
		case "emit-progress":
			cfg.Output.EmitProgress, _ = f.GetBool(fl.Name)
		case "csv":
			cfg.Output.CSVPath, _ = f.GetString(fl.Name)
		case "cache-dir":
			cfg.Cache.Dir, _ = f.GetString(fl.Name)
		case "ttl-hours":
			cfg.Cache.TTLHours, _ = f.GetFloat64(fl.Name)
		case "metrics-addr":
			cfg.Output.MetricsAddr, _ = f.GetString(fl.Name)
		}
	})
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manual := cfg.ManualList()
	target := cfg.Run.Target
	if cfg.Manual() {
		target = len(manual)
	}

	// Fetch stack
	telemetry := guards.NewTelemetry()
	pacer := guards.NewPacer(cfg.Pacing.Tunables().Scale(target), guards.WithTelemetry(telemetry))
	guard := guards.NewGuard(pacer, telemetry, providers.ClassifyError)
	upstream := yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Provider.BaseURL),
		yahoo.WithCookieURL(cfg.Provider.CookieURL),
		yahoo.WithHTTPClient(&http.Client{Timeout: cfg.Provider.GetRequestTimeout()}),
		yahoo.WithRateLimit(cfg.Provider.RPS),
		yahoo.WithUserAgent(cfg.Provider.UserAgent),
	)
	store := cache.Open(cfg.Cache.Dir, cfg.Cache.GetTTL())
	fetcher := providers.NewClient(upstream, store, guard)

	// Progress
	emitters := []progress.Emitter{progress.LogEmitter{}}
	if cfg.Output.EmitProgress {
		emitters = append(emitters, progress.NewJSONLines(os.Stdout))
	} else if quiet && stderrIsTerminal() {
		emitters = append(emitters, progress.NewBar(os.Stderr))
	}
	if cfg.Output.MetricsAddr != "" {
		emitters = append(emitters, httpobs.NewRunMetrics(telemetry.Registry()))
	}
	reporter := progress.NewReporter(emitters...)

	log.Info().
		Str("run_id", reporter.RunID()).
		Int("target", target).
		Float64("min_price", cfg.Run.MinPrice).
		Bool("manual", cfg.Manual()).
		Float64("scale", guards.ScaleFactor(target)).
		Msg("Starting valuescan run")

	if cfg.Output.MetricsAddr != "" {
		srv := httpobs.NewServer(httpobs.DefaultServerConfig(cfg.Output.MetricsAddr), telemetry.Registry(), reporter, telemetry)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("Observability server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Discovery
	var set *discovery.CandidateSet
	if cfg.Manual() {
		set = discovery.ManualSet(manual)
	} else {
		set, err = discoverCandidates(ctx, cfg, upstream, pacer)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
	}
	reporter.Candidates(set.Len(), cfg.Manual())

	// Eligibility, enrichment and scoring
	filters := pipeline.Filters{Sectors: cfg.Run.Sectors, Industries: cfg.Run.Industries}
	runner := pipeline.NewRunner(pipeline.Config{
		MinPrice:      cfg.Run.MinPrice,
		SymbolTimeout: cfg.Pacing.GetSymbolTimeout(),
		SkipTickers:   cfg.Run.SkipTickers,
		Filters:       filters,
	}, fetcher, scoring.NewCalculator(cfg.Scoring.Weights, cfg.Scoring.Policy), pacer, reporter)

	outcome, err := runner.Run(ctx, set, cfg.Manual())
	if err != nil {
		return fmt.Errorf("run aborted after %d symbols: %w", outcome.Processed, err)
	}

	// Selection
	resolver := selection.NewResolver(selection.Config{
		Target:        cfg.Run.Target,
		TopK:          cfg.Run.TopRankCount,
		Strict:        cfg.Run.Strict,
		MinPrice:      cfg.Run.MinPrice,
		SymbolTimeout: cfg.Pacing.GetSymbolTimeout(),
		Filters:       filters,
	}, fetcher, pacer)
	result, err := resolver.Resolve(ctx, outcome)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	csvPath := cfg.CSVPath()
	reporter.WritingCSV(csvPath)
	if err := report.WriteCSV(csvPath, result, displayName(fetcher)); err != nil {
		return err
	}

	if err := fetcher.Flush(); err != nil {
		log.Warn().Err(err).Msg("Cache flush failed")
	}

	counts := fetcher.Stats()
	log.Info().
		Int("selected", result.Selection.Len()).
		Int("calls", counts.Calls).
		Int("failures", counts.Failures).
		Int("cooldowns", counts.Cooldowns).
		Int("cache_hits", counts.CacheHits).
		Dur("duration", outcome.Duration).
		Msg("Run complete")
	reporter.Done(result.Selection.Len(), csvPath)
	return nil
}

func discoverCandidates(ctx context.Context, cfg *config.Config, lister discovery.Lister, pacer *guards.Pacer) (*discovery.CandidateSet, error) {
	sources := []discovery.Source{
		discovery.NewScreenSource(lister, pacer, guards.NewPageBreakers(screenBreakerThreshold), cfg.Discovery.Screens, cfg.Discovery.MaxScreenPages),
		discovery.NewTrendingSource(lister, pacer, cfg.Discovery.TrendingRegion),
	}
	if cfg.Discovery.Salvage {
		sources = append(sources, discovery.NewSalvageSource(cfg.SalvageFiles()...))
	}
	if cfg.Discovery.Seed {
		sources = append(sources, discovery.NewSeedSource(cfg.Discovery.SeedFloor))
	}

	set, err := discovery.NewAggregator(sources...).Discover(ctx)
	if err != nil {
		return nil, err
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("no candidates discovered")
	}
	return set, nil
}

// displayName names selected symbols from whatever the cache holds.
func displayName(fetcher providers.Fetcher) report.NameFunc {
	return func(sym string) string {
		if s, ok := fetcher.CachedSummary(sym); ok {
			if name := s.DisplayName(); name != "" {
				return name
			}
		}
		if q, ok := fetcher.CachedLightQuote(sym); ok {
			if q.LongName != "" {
				return q.LongName
			}
			return q.ShortName
		}
		return ""
	}
}
