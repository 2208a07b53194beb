package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gridmix/gridmix/internal/config"
	"github.com/gridmix/gridmix/internal/dataset"
)

var (
	flagConfig  string
	flagData    string
	flagVerbose bool

	logger zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridmix",
		Short: "Energy-mix scenario evaluator",
		Long: "gridmix sizes hypothetical generation fleets against an hourly load\n" +
			"series: given a renewable mix and a baseload fraction it computes\n" +
			"installed capacity per technology, the hourly power balance, and the\n" +
			"minimum storage/backup capacity the mix would need.",
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if flagVerbose {
				level = zerolog.DebugLevel
			}
			logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "gridmix.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "capacity-factor CSV (overrides config; embedded sample when neither is set)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadInputs resolves the config file and the dataset it points at. An
// empty CSV path selects the embedded sample.
func loadInputs() (*config.Config, *dataset.Table, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagData != "" {
		cfg.Dataset.CSVPath = flagData
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	var table *dataset.Table
	if cfg.Dataset.CSVPath == "" {
		logger.Debug().Msg("no dataset configured, using embedded sample")
		table, err = dataset.Sample()
	} else {
		table, err = dataset.Load(cfg.Dataset.CSVPath)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Debug().
		Int("rows", table.Len()).
		Str("from", table.Start().Format("2006-01-02 15:04")).
		Str("to", table.End().Format("2006-01-02 15:04")).
		Msg("dataset loaded")
	return cfg, table, nil
}
