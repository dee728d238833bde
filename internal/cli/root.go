// Package cli wires the analysis engine to a cobra command tree. This is a
// thin operator surface; the real presentation layer lives with a
// downstream collaborator and consumes the composer's context block.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trainsight/internal/config"
	"trainsight/internal/service"
	"trainsight/internal/store"
)

var (
	flagAthlete int64
	flagWindow  int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "trainsight",
	Short:         "Per-athlete causal attribution over training and recovery data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagAthlete, "athlete", 1, "athlete id")
	rootCmd.PersistentFlags().IntVar(&flagWindow, "window", 0, "lookback window in days (30-365)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(analyzeCmd, ghostCmd, insightsCmd, seedCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// openAnalyzer loads config and the store and builds the analyzer.
// The returned closer must be deferred.
func openAnalyzer() (*service.Analyzer, func(), error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return nil, nil, fmt.Errorf("creating example config: %w", err)
		}
		cfg, err = config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	return service.New(db, *cfg), func() { db.Close() }, nil
}
