// Package cli implements the ragbench command line: cobra commands and output rendering.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "ragbench",
	Short: "Retrieval-augmented question answering over your documents",
	Long: `ragbench chunks and embeds documents, retrieves and reranks evidence for a
question, and answers it with a local extractive generator, Ollama, or OpenAI.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// Execute loads .env and runs the root command.
func Execute() error {
	// A missing .env file is normal.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// loadConfig resolves the config to use. An explicit path must load; without one,
// ./config.yaml is used when it exists and built-in defaults otherwise. The returned
// path is empty when no file backs the config.
func loadConfig() (*config.Config, string, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, configPath, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		fallback := filepath.Join(cwd, "config.yaml")
		if _, statErr := os.Stat(fallback); statErr == nil {
			cfg, loadErr := config.Load(fallback)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, fallback, nil
		}
	}
	return config.Default(), "", nil
}

// commandLogger returns the logger for one-shot commands: silent unless debug is on.
func commandLogger(cfg *config.Config) (*zap.Logger, error) {
	if !debugFlag && !cfg.Debug {
		return zap.NewNop(), nil
	}
	logger, err := utils.NewLogger(true)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
