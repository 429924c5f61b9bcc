// Package config provides configuration loading and structs for the ragbench pipeline.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvLLMProvider   = "RAGBENCH_LLM_PROVIDER"
	EnvLLMModel      = "RAGBENCH_LLM_MODEL"
	EnvOllamaBaseURL = "RAGBENCH_OLLAMA_BASE_URL"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Rerank    RerankConfig    `yaml:"rerank"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MaxUploadMB bounds the multipart body of the upload endpoint.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// ChunkConfig selects the chunking strategy. Size and Overlap are in characters (code points).
type ChunkConfig struct {
	Strategy string `yaml:"strategy"`
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
	// overlapSet records an explicit overlap in the file, so overlap: 0 is kept.
	overlapSet bool
}

// UnmarshalYAML decodes the chunk section and remembers whether overlap was given.
func (c *ChunkConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Strategy string `yaml:"strategy"`
		Size     int    `yaml:"size"`
		Overlap  *int   `yaml:"overlap"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Strategy, c.Size = raw.Strategy, raw.Size
	c.Overlap, c.overlapSet = 0, raw.Overlap != nil
	if raw.Overlap != nil {
		c.Overlap = *raw.Overlap
	}
	return nil
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	// ModelPath and MaxTokens are used by the onnx provider.
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
	// BaseURL overrides the OpenAI endpoint for compatible servers.
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// APIKey is never read from or written to the config file; see ApplyEnv.
	APIKey string `yaml:"-"`
}

// IndexConfig selects the vector index backend and its scoring function.
type IndexConfig struct {
	Backend string `yaml:"backend"`
	Scorer  string `yaml:"scorer"`
}

// RetrievalConfig holds candidate lookup defaults and optional keyword fusion.
type RetrievalConfig struct {
	TopK           int     `yaml:"top_k"`
	TopN           int     `yaml:"top_n"`
	KeywordEnabled bool    `yaml:"keyword_enabled"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
}

// RerankConfig selects the rerank scoring policy.
type RerankConfig struct {
	Strategy string `yaml:"strategy"`
}

// LLMConfig selects the answer generator and its model.
type LLMConfig struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	OllamaBaseURL  string  `yaml:"ollama_base_url"`
	OpenAIBaseURL  string  `yaml:"openai_base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	// APIKey is never read from or written to the config file; see ApplyEnv.
	APIKey string `yaml:"-"`
}

// StorageConfig holds paths for the chunk database and keyword index.
// Empty paths keep everything in memory.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Default returns a config with environment overrides read and all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyEnv(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, applies environment overrides and
// then defaults, expands paths, and validates the result. Overrides come first so that
// provider-dependent defaults such as the LLM model follow the overridden provider.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path. Credentials are never written.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SaveWatchDirectories rewrites only watch.directories in the config file at path,
// leaving every other key, including comments, as the user wrote it. A missing file
// is created holding just the watch section.
func SaveWatchDirectories(path string, dirs []string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("failed to update config: top level is not a mapping")
	}

	if dirs == nil {
		dirs = []string{}
	}
	var dirsNode yaml.Node
	if err := dirsNode.Encode(dirs); err != nil {
		return fmt.Errorf("failed to encode watch directories: %w", err)
	}
	watch := mappingValue(root, "watch")
	if watch.Kind != yaml.MappingNode {
		*watch = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	*mappingValue(watch, "directories") = dirsNode

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// mappingValue returns the value node for key in mapping m, appending an empty one if absent.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, k, v)
	return v
}

// ApplyEnv reads the cloud credential and provider overrides from the process environment.
// This is the only place the pipeline reads ambient environment state.
func ApplyEnv(cfg *Config) {
	if key := strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)); key != "" {
		cfg.LLM.APIKey = key
		cfg.Embedding.APIKey = key
	}
	if v := strings.TrimSpace(os.Getenv(EnvLLMProvider)); v != "" {
		cfg.LLM.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLLMModel)); v != "" {
		cfg.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOllamaBaseURL)); v != "" {
		cfg.LLM.OllamaBaseURL = v
	}
}

// Validate checks numeric ranges. Provider and strategy names are validated by the
// constructors that consume them.
func (c *Config) Validate() error {
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk.size must be positive, got %d", c.Chunk.Size)
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("chunk.overlap must be in [0, %d), got %d", c.Chunk.Size, c.Chunk.Overlap)
	}
	if c.Retrieval.TopK < 1 || c.Retrieval.TopN < 1 {
		return fmt.Errorf("retrieval.top_k and retrieval.top_n must be >= 1")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %s",
			strconv.FormatFloat(c.LLM.Temperature, 'f', -1, 64))
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" and "" are kept as-is.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
