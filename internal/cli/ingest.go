package cli

import (
	"fmt"
	"time"

	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/internal/pipeline"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

var (
	ingestServer  string
	ingestLocal   bool
	ingestReplace bool
	ingestOutput  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Parse and ingest files",
	Long: `Uploads files to a running server. With --local the files are ingested into the
configured chunk store directly; this only outlives the command when
storage.database_path points at a file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestServer, "server", defaultServerURL, "server URL")
	ingestCmd.Flags().BoolVar(&ingestLocal, "local", false, "ingest into the configured store without a server")
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "replace existing chunks of the same document id")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "text", "output format: text or json")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(ingestOutput)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var results []models.IngestResult
	if ingestLocal {
		if cfg.Storage.DatabasePath == "" || cfg.Storage.DatabasePath == ":memory:" {
			cmd.PrintErrln("warning: storage.database_path is not set; ingested chunks are discarded on exit")
		}
		logger, err := commandLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		svc, err := pipeline.FromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}
		defer func() { _ = svc.Close() }()
		results = ingestFiles(cmd.Context(), svc.Pipeline, args, ingestReplace, logger)
	} else {
		client := newAPIClient(ingestServer, time.Duration(cfg.Embedding.TimeoutSeconds+60)*time.Second)
		results, err = client.upload(args, ingestReplace)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
	}
	if err := WriteIngestResults(cmd.OutOrStdout(), results, format); err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != "" {
			return fmt.Errorf("some files failed to ingest")
		}
	}
	return nil
}
