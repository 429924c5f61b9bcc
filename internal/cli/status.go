package cli

import (
	"fmt"
	"time"

	"github.com/hyperjump/ragbench/internal/pipeline"
	"github.com/hyperjump/ragbench/internal/storage"
	"github.com/spf13/cobra"
)

var (
	statusServer string
	statusLocal  bool
	statusOutput string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusServer, "server", defaultServerURL, "server URL")
	statusCmd.Flags().BoolVar(&statusLocal, "local", false, "read the configured store without a server")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := ParseOutputFormat(statusOutput)
	if err != nil {
		return err
	}
	if !statusLocal {
		status, err := newAPIClient(statusServer, 10*time.Second).status()
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		return WriteStatus(cmd.OutOrStdout(), status, format)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := commandLogger(cfg)
	if err != nil {
		return err
	}
	svc, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer func() { _ = svc.Close() }()
	if _, err := svc.Restore(cmd.Context()); err != nil {
		return fmt.Errorf("failed to restore index: %w", err)
	}
	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if diskBytes, err := storage.IndexDiskUsage(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath); err == nil {
		stats.DiskUsageBytes = diskBytes
	}
	return WriteStatus(cmd.OutOrStdout(), &StatusResponse{IndexStats: *stats, Provider: svc.Provider()}, format)
}
