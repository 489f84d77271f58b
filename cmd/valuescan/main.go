package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "valuescan"
	version = "v1.0.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "NASDAQ undervaluation scanner",
		Version: version,
		Long: `valuescan discovers NASDAQ-listed equities, screens them for eligibility,
scores each on a composite undervaluation model plus nine aspect scores,
and writes a ranked, size-bounded selection with Top-K lists.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			quiet, _ := cmd.Flags().GetBool("quiet")
			debug, _ := cmd.Flags().GetBool("debug")
			setupLogging(quiet, debug)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().Bool("quiet", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCacheCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setupLogging uses a console writer on a terminal and JSON lines otherwise.
func setupLogging(quiet, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if stderrIsTerminal() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch {
	case debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case quiet:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
