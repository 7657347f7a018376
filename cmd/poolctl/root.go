package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/mempool"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Run scripted workloads against memory pools",
	Long: `poolctl opens memory pools, drives them with small allocation scripts,
and reports placement, layout and validation results. It is meant for
exploring first-fit and best-fit behavior and for reproducing layouts.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON pool configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the stderr logger selected by the global flags.
func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if logJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig(log *slog.Logger) (mempool.Config, error) {
	cfg := mempool.DefaultConfig()
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return mempool.Config{}, errors.Wrap(err, "open config")
		}
		defer f.Close()
		cfg, err = mempool.LoadConfig(f)
		if err != nil {
			return mempool.Config{}, errors.Wrapf(err, "load config %s", configPath)
		}
		printVerbose("Loaded config: %s\n", configPath)
	}
	cfg.Logger = log
	return cfg, nil
}

// newRegistry initializes a registry from the global flags.
func newRegistry() (*mempool.Registry, error) {
	log := newLogger()
	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}
	reg := mempool.NewRegistry(cfg)
	if err := reg.Init(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
