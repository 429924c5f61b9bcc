package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/ragbench/internal/config"
	"github.com/hyperjump/ragbench/internal/extract"
	"github.com/hyperjump/ragbench/internal/models"
	"github.com/hyperjump/ragbench/internal/pipeline"
	"github.com/hyperjump/ragbench/internal/storage"
	"go.uber.org/zap"
)

// uploadFormFields are the multipart field names accepted for files.
var uploadFormFields = []string{"files", "file"}

func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(input.ID) == "" {
		input.ID = uuid.NewString()
	}
	s.logger.Debug("ingest document request", zap.String("id", input.ID), zap.Bool("replace", input.Replace))

	ingest := s.pipeline.Ingest
	if input.Replace {
		ingest = s.pipeline.Replace
	}
	n, err := ingest(r.Context(), input.ID, input.Content)
	if err != nil {
		s.respondPipelineError(w, "ingestion failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, models.IngestResult{DocumentID: input.ID, Chunks: n})
}

type uploadResponse struct {
	Results []models.IngestResult `json:"results"`
}

// handleUpload parses and ingests every uploaded file independently. A file that fails
// to parse or has no text is reported in its result; the others still go through.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(32) << 20
	if s.config != nil && s.config.Server.MaxUploadMB > 0 {
		maxBytes = int64(s.config.Server.MaxUploadMB) << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var files []*multipart.FileHeader
	for _, field := range uploadFormFields {
		files = append(files, r.MultipartForm.File[field]...)
	}
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	replace := r.FormValue("replace") == "true"

	results := make([]models.IngestResult, len(files))
	for i, fh := range files {
		results[i] = s.ingestUpload(r, fh, replace)
		if s.metrics != nil {
			s.metrics.FileUploaded(results[i].SourceType, results[i].Error == "")
		}
	}
	s.respondJSON(w, http.StatusOK, uploadResponse{Results: results})
}

func (s *Server) ingestUpload(r *http.Request, fh *multipart.FileHeader, replace bool) models.IngestResult {
	name := filepath.Base(fh.Filename)
	result := models.IngestResult{Filename: name}
	fail := func(err error) models.IngestResult {
		s.logger.Warn("upload failed", zap.String("filename", name), zap.Error(err))
		result.Error = err.Error()
		return result
	}

	f, err := fh.Open()
	if err != nil {
		return fail(fmt.Errorf("open upload: %w", err))
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return fail(fmt.Errorf("read upload: %w", err))
	}
	doc, err := extract.Parse(name, data)
	if err != nil {
		return fail(err)
	}
	result.DocumentID = doc.DocumentID
	result.SourceType = doc.SourceType
	if strings.TrimSpace(doc.Content) == "" {
		return fail(errors.New("no extractable text"))
	}

	ingest := s.pipeline.Ingest
	if replace {
		ingest = s.pipeline.Replace
	}
	n, err := ingest(r.Context(), doc.DocumentID, doc.Content)
	if err != nil {
		return fail(err)
	}
	result.Chunks = n
	s.logger.Info("upload ingested",
		zap.String("filename", name), zap.String("doc_id", doc.DocumentID), zap.Int("chunks", n))
	return result
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.pipeline.Delete(r.Context(), id); err != nil {
		s.respondPipelineError(w, "deletion failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("answer request", zap.Int("top_k", req.TopK), zap.Int("top_n", req.TopN))
	result, err := s.pipeline.Answer(r.Context(), req.Query, req.TopK, req.TopN)
	if err != nil {
		s.respondPipelineError(w, "answer failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Reset(r.Context()); err != nil {
		s.respondPipelineError(w, "reset failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	*models.IndexStats
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.pipeline.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := statusResponse{IndexStats: stats, Provider: s.pipeline.Provider()}
	if s.config != nil {
		c := s.config
		resp.Config = map[string]any{
			"chunk_strategy":      c.Chunk.Strategy,
			"chunk_size":          c.Chunk.Size,
			"chunk_overlap":       c.Chunk.Overlap,
			"embedding_provider":  c.Embedding.Provider,
			"embedding_dimension": c.Embedding.Dimensions,
			"index_backend":       c.Index.Backend,
			"index_scorer":        c.Index.Scorer,
			"rerank_strategy":     c.Rerank.Strategy,
			"keyword_enabled":     c.Retrieval.KeywordEnabled,
			"llm_model":           c.LLM.Model,
			"database_path":       c.Storage.DatabasePath,
			"bleve_index_path":    c.Storage.BleveIndexPath,
		}
		diskBytes, err := storage.IndexDiskUsage(c.Storage.DatabasePath, c.Storage.BleveIndexPath)
		if err == nil {
			stats.DiskUsageBytes = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"directories": s.watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

// persistWatchDirectories saves the current watch roots to the config file, if one is known.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.watchConfigMu.Lock()
	defer s.watchConfigMu.Unlock()
	s.config.Watch.Directories = s.watch.Directories()
	if err := config.SaveWatchDirectories(s.configPath, s.config.Watch.Directories); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// respondPipelineError maps invalid requests to 400 and everything else to 500.
func (s *Server) respondPipelineError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, pipeline.ErrInvalidRequest) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error(msg, zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
