// Package config provides configuration loading and structs for the resumatch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Engine    EngineConfig    `yaml:"engine"`
	Inbox     InboxConfig     `yaml:"inbox"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// StorageConfig holds paths for the candidate database, vector index and uploaded resumes.
// The database and the vector index are two halves of one logical table and must
// always be backed up and restored together.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	UploadDir       string `yaml:"upload_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "onnx", "openai" or "hash".
	Provider   string       `yaml:"provider"`
	ModelPath  string       `yaml:"model_path"`
	Dimensions int          `yaml:"dimensions"`
	MaxTokens  int          `yaml:"max_tokens"`
	CacheSize  int          `yaml:"cache_size"`
	OpenAI     OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds settings for the hosted embedding provider.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	IndexType string `yaml:"index_type"`
}

// Reload policies for EngineConfig.ReloadPolicy.
const (
	// ReloadStartup loads the index and candidate positions once, when the engine is built.
	ReloadStartup = "startup"
	// ReloadAlways re-reads both from disk before every engine call.
	ReloadAlways = "always"
)

// EngineConfig holds search engine settings.
type EngineConfig struct {
	ReloadPolicy string `yaml:"reload_policy"`
	DefaultTopK  int    `yaml:"default_top_k"`
	MaxTopK      int    `yaml:"max_top_k"`
}

// InboxConfig holds the watched resume drop directories.
type InboxConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to false when unset.
func (w *InboxConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return false
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// A .env file next to the config (if present) is loaded into the environment first.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotEnv(filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.UploadDir = expandPath(cfg.Storage.UploadDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that ApplyDefaults cannot repair.
func Validate(cfg *Config) error {
	switch cfg.Engine.ReloadPolicy {
	case ReloadStartup, ReloadAlways:
	default:
		return fmt.Errorf("invalid engine.reload_policy %q (supported: %s, %s)", cfg.Engine.ReloadPolicy, ReloadStartup, ReloadAlways)
	}
	switch cfg.Embedding.Provider {
	case "onnx", "openai", "hash":
	default:
		return fmt.Errorf("invalid embedding.provider %q (supported: onnx, openai, hash)", cfg.Embedding.Provider)
	}
	if cfg.Engine.DefaultTopK > cfg.Engine.MaxTopK {
		return fmt.Errorf("engine.default_top_k (%d) exceeds engine.max_top_k (%d)", cfg.Engine.DefaultTopK, cfg.Engine.MaxTopK)
	}
	// Uploads are indexed directly; an inbox watching the upload directory would index them twice.
	for _, dir := range cfg.Inbox.Directories {
		if within(cfg.Storage.UploadDir, dir) {
			return fmt.Errorf("storage.upload_dir %q must not be inside inbox directory %q", cfg.Storage.UploadDir, dir)
		}
	}
	return nil
}

// within reports whether path is dir or a descendant of it.
func within(path, dir string) bool {
	if path == "" || dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
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
