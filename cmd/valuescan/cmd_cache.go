package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sawpanic/valuescan/internal/data/cache"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Snapshot cache commands",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Count fresh and stale records per kind",
		RunE:  runCacheStats,
	}
	statsCmd.Flags().String("cache-dir", "", "Snapshot cache directory")
	statsCmd.Flags().Float64("ttl-hours", 0, "Snapshot freshness window in hours")

	cacheCmd.AddCommand(statsCmd)
	return cacheCmd
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store := cache.Open(cfg.Cache.Dir, cfg.Cache.GetTTL())
	qFresh, qStale := store.Quotes.Counts()
	sFresh, sStale := store.Summaries.Counts()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tFRESH\tSTALE\tFILE\n")
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", store.Quotes.Name(), qFresh, qStale, cache.QuotesFile)
	fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", store.Summaries.Name(), sFresh, sStale, cache.SummariesFile)
	fmt.Fprintf(w, "\nDir: %s  TTL: %s\n", store.Dir(), cfg.Cache.GetTTL())
	return w.Flush()
}
