// Package main provides the lexicon_agent CLI: novel vocabulary analysis
// from the terminal or over HTTP.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/novel-lexicon/internal/config"
	"github.com/jonathan/novel-lexicon/internal/logger"
	"github.com/jonathan/novel-lexicon/internal/pipeline"
)

// exitInput is the exit status for rejected input.
const exitInput = 2

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "lexicon_agent",
	Short:         "Novel vocabulary analysis",
	Long:          "lexicon_agent asks a language model about a novel and turns its answers into a plot summary, a reading-difficulty assessment, example sentences and a graded vocabulary list.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file (defaults to CONFIG_PATH or ./lexicon.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline details to stderr")
}

// loadConfig reads the config file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger returns a zap-backed logger when verbose, a no-op otherwise.
func newLogger(cfg *config.Config, force bool) (*logger.Logger, error) {
	if !verbose && !force {
		return logger.Nop(), nil
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// exitCode maps a command error to a process exit status.
func exitCode(err error) int {
	var inputErr *pipeline.InputError
	if errors.As(err, &inputErr) {
		return exitInput
	}
	return 1
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
