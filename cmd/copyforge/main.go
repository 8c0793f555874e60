// copyforge: versioned marketing copy with edit overlays and fact-locked regeneration
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/copyforge/internal/config"
	"github.com/nainya/copyforge/internal/logger"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "copyforge",
	Short: "copyforge - generated marketing copy you can edit and safely regenerate",
	Long: `copyforge serves the logo, job posting and promotional offer studios.

Each studio keeps an immutable history of generated versions, an edit overlay
on top of them, and re-checks regenerated wording against the facts you
already locked in (offer value, expiration date, restriction, call-to-action).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "copyforge.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, correctCmd, factsCmd)
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.InitGlobalLogger(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
