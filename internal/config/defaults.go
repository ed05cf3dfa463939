package config

import (
	"github.com/hyperjump/kagi/internal/ai"
	"github.com/hyperjump/kagi/internal/models"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kagi/data/db/shortcuts.db"
	}
	if cfg.Catalog.Extensions == nil {
		cfg.Catalog.Extensions = []string{".yaml", ".yml", ".json", ".xlsx"}
	}
	if len(cfg.Catalog.Directories) > 0 && cfg.Catalog.Recursive == nil {
		t := true
		cfg.Catalog.Recursive = &t
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = models.DefaultKeywordLimit
	}
	if cfg.Search.SemanticLimit == 0 {
		cfg.Search.SemanticLimit = models.DefaultSemanticLimit
	}
	if cfg.Search.CandidatePool == 0 {
		cfg.Search.CandidatePool = 50
	}
	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = 10000
	}
	if cfg.Search.Suggestions == 0 {
		cfg.Search.Suggestions = 3
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = string(ai.KindNone)
	}
	if cfg.AI.TimeoutMS == 0 {
		cfg.AI.TimeoutMS = ai.DefaultTimeoutMS
	}
	if cfg.AI.ExplainCacheSize == 0 {
		cfg.AI.ExplainCacheSize = 256
	}
	if cfg.AI.Breaker.MaxFailures == 0 {
		cfg.AI.Breaker.MaxFailures = 5
	}
	if cfg.AI.Breaker.CooldownSeconds == 0 {
		cfg.AI.Breaker.CooldownSeconds = 30
	}
}
