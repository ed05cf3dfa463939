// Package config provides configuration loading and structs for the kagi server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kagi/internal/ai"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Search  SearchConfig  `yaml:"search"`
	AI      AIConfig      `yaml:"ai"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the record store.
type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver       string `yaml:"driver"`
	DatabasePath string `yaml:"database_path"`
}

// CatalogConfig lists the directories shortcut catalogs are imported from.
type CatalogConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Watch       bool     `yaml:"watch"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to scan directories recursively; defaults to true when unset.
func (c *CatalogConfig) RecursiveOrDefault() bool {
	if c.Recursive != nil {
		return *c.Recursive
	}
	return true
}

// SearchConfig holds search limits.
type SearchConfig struct {
	DefaultLimit  int `yaml:"default_limit"`
	SemanticLimit int `yaml:"semantic_limit"`
	CandidatePool int `yaml:"candidate_pool"`
	MaxCandidates int `yaml:"max_candidates"`
	// Suggestions is the number of "did you mean" spellings returned when a search has no hits.
	Suggestions int `yaml:"suggestions"`
}

// AIConfig configures the remote ranking provider.
type AIConfig struct {
	Provider  string        `yaml:"provider"`
	APIKey    string        `yaml:"api_key,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	TimeoutMS int           `yaml:"timeout_ms"`
	Breaker   BreakerConfig `yaml:"breaker"`

	// ExplainCacheSize is how many explanations are remembered; negative disables the cache.
	ExplainCacheSize int `yaml:"explain_cache_size"`
}

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	Enabled         bool `yaml:"enabled"`
	MaxFailures     int  `yaml:"max_failures"`
	CooldownSeconds int  `yaml:"cooldown_seconds"`
}

// ProviderConfig converts the section into an ai.Config.
func (a AIConfig) ProviderConfig() (ai.Config, error) {
	kind, err := ai.ParseKind(a.Provider)
	if err != nil {
		return ai.Config{}, err
	}
	return ai.Config{
		Kind:      kind,
		APIKey:    a.APIKey,
		Model:     a.Model,
		BaseURL:   a.BaseURL,
		TimeoutMS: a.TimeoutMS,
	}, nil
}

// BreakerSettings converts the breaker section into ai.BreakerConfig.
func (a AIConfig) BreakerSettings() ai.BreakerConfig {
	return ai.BreakerConfig{
		MaxFailures: uint32(max(a.Breaker.MaxFailures, 0)),
		Cooldown:    time.Duration(a.Breaker.CooldownSeconds) * time.Second,
	}
}

// Environment variables that override the ai section.
const (
	EnvAIProvider = "KAGI_AI_PROVIDER"
	EnvAIAPIKey   = "KAGI_AI_API_KEY"
	EnvAIModel    = "KAGI_AI_MODEL"
	EnvAIBaseURL  = "KAGI_AI_BASE_URL"
)

// Load reads and parses the config file at path, expands paths, applies
// environment overrides and defaults.
// Returns an error if the file cannot be read or parsed.
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
	for i := range cfg.Catalog.Directories {
		cfg.Catalog.Directories[i] = expandPath(cfg.Catalog.Directories[i], configDir)
	}

	return &cfg, nil
}

// Default returns a configuration with defaults and environment overrides
// applied, for running without a config file.
func Default() *Config {
	var cfg Config
	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyEnv overrides the ai section from KAGI_AI_* environment variables.
func ApplyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAIProvider); ok && v != "" {
		cfg.AI.Provider = v
	}
	if v, ok := os.LookupEnv(EnvAIAPIKey); ok && v != "" {
		cfg.AI.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvAIModel); ok && v != "" {
		cfg.AI.Model = v
	}
	if v, ok := os.LookupEnv(EnvAIBaseURL); ok && v != "" {
		cfg.AI.BaseURL = v
	}
}

// Save writes the config to path. Used for persisting catalog directory add/remove.
// The API key is never written.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.AI.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	path = strings.TrimPrefix(path, "~/")
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
