package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/ragbench/internal/models"
)

// StatusResponse is the shape of GET /api/v1/status.
type StatusResponse struct {
	models.IndexStats
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config,omitempty"`
}

// apiClient talks to a running ragbench server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) postJSON(path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) answer(query *models.AnswerRequest) (*models.AnswerResult, error) {
	var result models.AnswerResult
	if err := c.postJSON("/api/v1/answer", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) ingestText(input models.DocumentInput) (*models.IngestResult, error) {
	var result models.IngestResult
	if err := c.postJSON("/api/v1/documents", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// upload sends files as one multipart request and returns the per-file results.
func (c *apiClient) upload(paths []string, replace bool) ([]models.IngestResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		part, err := mw.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
	}
	if replace {
		if err := mw.WriteField("replace", "true"); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/documents/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var resp struct {
		Results []models.IngestResult `json:"results"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *apiClient) status() (*StatusResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/v1/status", nil)
	if err != nil {
		return nil, err
	}
	var status StatusResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
