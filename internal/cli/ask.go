package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/extract"
	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askFiles  []string
	askDocs   []string
	askTopK   int
	askTopN   int
	askOutput string
	askServer string
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a question from ingested documents",
	Long: `Ingests the given files and inline documents, then answers the question with
evidence. With --server the documents and the question go to a running server;
otherwise everything runs in this process.`,
	Example: `  ragbench ask "What is RAG?" --doc doc-1="RAG combines retrieval and generation."
  ragbench ask "quarterly revenue" --file report.pdf --file notes.md --output json
  ragbench ask "what changed?" --server http://localhost:8080`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askFiles, "file", "f", nil, "file to parse and ingest before answering (repeatable)")
	askCmd.Flags().StringArrayVarP(&askDocs, "doc", "d", nil, "inline document as id=text (repeatable)")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "candidates to retrieve (default retrieval.top_k)")
	askCmd.Flags().IntVar(&askTopN, "top-n", 0, "evidence passages to keep (default retrieval.top_n)")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "text", "output format: text or json")
	askCmd.Flags().StringVar(&askServer, "server", "", "server URL; empty runs in-process")
	rootCmd.AddCommand(askCmd)
}

// parseInlineDoc splits an "id=text" flag value.
func parseInlineDoc(s string) (models.DocumentInput, error) {
	id, text, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return models.DocumentInput{}, fmt.Errorf("invalid --doc %q: want id=text", s)
	}
	return models.DocumentInput{ID: id, Content: text}, nil
}

func buildAnswerRequest(args []string, cfg *config.Config) (*models.AnswerRequest, error) {
	req := &models.AnswerRequest{
		Query: strings.Join(args, " "),
		TopK:  cfg.Retrieval.TopK,
		TopN:  cfg.Retrieval.TopN,
	}
	if askTopK != 0 {
		req.TopK = askTopK
	}
	if askTopN != 0 {
		req.TopN = askTopN
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(askOutput)
	if err != nil {
		return err
	}
	docs := make([]models.DocumentInput, 0, len(askDocs))
	for _, d := range askDocs {
		doc, err := parseInlineDoc(d)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	req, err := buildAnswerRequest(args, cfg)
	if err != nil {
		return err
	}

	var result *models.AnswerResult
	if askServer != "" {
		result, err = askViaHTTP(cmd, cfg, req, docs)
	} else {
		result, err = askInProcess(cmd.Context(), cmd, cfg, req, docs)
	}
	if err != nil {
		return err
	}
	return WriteAnswer(cmd.OutOrStdout(), result, format)
}

func askViaHTTP(cmd *cobra.Command, cfg *config.Config, req *models.AnswerRequest, docs []models.DocumentInput) (*models.AnswerResult, error) {
	client := newAPIClient(askServer, time.Duration(cfg.LLM.TimeoutSeconds+30)*time.Second)
	if len(askFiles) > 0 {
		results, err := client.upload(askFiles, false)
		if err != nil {
			return nil, fmt.Errorf("upload failed: %w", err)
		}
		reportIngestFailures(cmd, results)
	}
	for _, doc := range docs {
		if _, err := client.ingestText(doc); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", doc.ID, err)
		}
	}
	result, err := client.answer(req)
	if err != nil {
		return nil, fmt.Errorf("answer failed: %w", err)
	}
	return result, nil
}

func askInProcess(ctx context.Context, cmd *cobra.Command, cfg *config.Config, req *models.AnswerRequest, docs []models.DocumentInput) (*models.AnswerResult, error) {
	logger, err := commandLogger(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer func() { _ = svc.Close() }()

	if _, err := svc.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore index: %w", err)
	}
	results := ingestFiles(ctx, svc.Pipeline, askFiles, false, logger)
	reportIngestFailures(cmd, results)
	for _, doc := range docs {
		if _, err := svc.Ingest(ctx, doc.ID, doc.Content); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", doc.ID, err)
		}
	}
	return svc.Answer(ctx, req.Query, req.TopK, req.TopN)
}

// ingestFiles parses and ingests each file independently. Failures are reported in the
// file's result and do not stop the others.
func ingestFiles(ctx context.Context, p *pipeline.Pipeline, paths []string, replace bool, logger *zap.Logger) []models.IngestResult {
	ingest := p.Ingest
	if replace {
		ingest = p.Replace
	}
	results := make([]models.IngestResult, 0, len(paths))
	for _, path := range paths {
		result := models.IngestResult{Filename: path}
		doc, err := extract.ParseFile(path)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.DocumentID = doc.DocumentID
		result.SourceType = doc.SourceType
		if strings.TrimSpace(doc.Content) == "" {
			result.Error = "no extractable text"
			results = append(results, result)
			continue
		}
		n, err := ingest(ctx, doc.DocumentID, doc.Content)
		if err != nil {
			result.Error = err.Error()
		}
		result.Chunks = n
		logger.Debug("file ingested", zap.String("path", path), zap.String("doc_id", doc.DocumentID), zap.Int("chunks", n))
		results = append(results, result)
	}
	return results
}

func reportIngestFailures(cmd *cobra.Command, results []models.IngestResult) {
	for _, r := range results {
		if r.Error != "" {
			cmd.PrintErrf("warning: skipped %s: %s\n", r.Filename, r.Error)
		}
	}
}
