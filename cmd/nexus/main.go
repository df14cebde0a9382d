package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evopyramid/evonexus/internal/config"
	"github.com/evopyramid/evonexus/internal/engine"
	"github.com/evopyramid/evonexus/internal/flowmon"
	"github.com/evopyramid/evonexus/internal/memory"
)

// #region globals

var (
	cfgFile string
	dbPath  string
	flowLog string
	verbose bool

	logger *zap.Logger
	cfg    config.Config
)

// #endregion globals

// #region root

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "Context pipeline: analyze, route, deliberate, decide",
	Long: `nexus runs user input through a multi-signal context pipeline:
three analyzers produce intent, affect, and memory signals; a router
selects the priority path; a council of weighted voices deliberates; and
a consensus engine issues the final decision with flow metrics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		v := viper.New()
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
		cfg = config.Load(v)
		if dbPath != "" {
			cfg.MemoryDBPath = dbPath
		}
		if flowLog != "" {
			cfg.FlowLogPath = flowLog
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// #endregion root

// #region wiring

// wireEngine opens the store and flow sink and assembles the engine.
// The returned cleanup flushes and closes both.
func wireEngine() (*engine.Engine, func(), error) {
	store := memory.Open(cfg.MemoryDBPath, logger)

	sink, err := flowmon.OpenSink(cfg.FlowLogPath)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("open flow log %s: %w", cfg.FlowLogPath, err)
	}

	eng, err := engine.New(cfg, store, sink, logger)
	if err != nil {
		sink.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		sink.Close()
		store.Close()
	}
	return eng, cleanup, nil
}

// #endregion wiring

// #region main

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "override memory database path")
	rootCmd.PersistentFlags().StringVar(&flowLog, "flow-log", "", "override flow metrics log path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newReplCmd(),
		newQueryCmd(),
		newMemoryCmd(),
		newMetricsCmd(),
		newReplayCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main
