package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// Config represents the full application configuration
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Routing   RoutingConfig   `yaml:"routing"`
	Limits    LimitsConfig    `yaml:"limits"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
}

// StoreConfig selects the Issue Store backend
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	Path   string `yaml:"path"`   // sqlite database path
}

// IndexConfig selects the similarity index backend
type IndexConfig struct {
	Backend    string       `yaml:"backend"` // "memory" or "qdrant"
	Collection string       `yaml:"collection"`
	Dimensions int          `yaml:"dimensions"`
	SeedLimit  int          `yaml:"seed_limit"` // reports loaded on Initialize
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// LLMConfig contains the chat model used for routing, category
// fallback, and status answers
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// DedupConfig contains duplicate decision settings
type DedupConfig struct {
	Threshold float64 `yaml:"threshold"`
	TopK      int     `yaml:"top_k"`
}

// RoutingConfig contains the documented defaults substituted when the
// routing model reply is missing fields or the call fails
type RoutingConfig struct {
	DefaultDepartment string `yaml:"default_department"`
	DefaultPriority   string `yaml:"default_priority"`
	DefaultTime       string `yaml:"default_time"`
	DefaultMessage    string `yaml:"default_message"`
}

// LimitsConfig bounds outbound requests per second per service
type LimitsConfig struct {
	EmbeddingRPS int `yaml:"embedding_requests_per_second"`
	LLMRPS       int `yaml:"llm_requests_per_second"`
}

// TimeoutsConfig bounds external calls so a slow upstream degrades
// instead of hanging the caller
type TimeoutsConfig struct {
	EmbedSeconds int `yaml:"embed_seconds"`
	RouteSeconds int `yaml:"route_seconds"`
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"namma.yaml",
		"namma.yml",
		".namma/config.yaml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "namma-agent", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// Default returns a config with all defaults applied, used when no
// config file exists (memory store + memory index, no providers).
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "memory"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "namma_reports"
	}
	if cfg.Index.Dimensions == 0 {
		cfg.Index.Dimensions = 768
	}
	if cfg.Index.SeedLimit == 0 {
		cfg.Index.SeedLimit = 500
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}

	// Dedup cutoffs are configurable defaults, not tuned constants.
	if cfg.Dedup.Threshold == 0 {
		cfg.Dedup.Threshold = 0.8
	}
	if cfg.Dedup.TopK == 0 {
		cfg.Dedup.TopK = 3
	}

	if cfg.Routing.DefaultDepartment == "" {
		cfg.Routing.DefaultDepartment = "Unassigned"
	}
	if cfg.Routing.DefaultPriority == "" {
		cfg.Routing.DefaultPriority = models.PriorityMedium
	}
	if cfg.Routing.DefaultTime == "" {
		cfg.Routing.DefaultTime = "3 days"
	}
	if cfg.Routing.DefaultMessage == "" {
		cfg.Routing.DefaultMessage = "Thank you for your report. It has been forwarded to the relevant department."
	}

	if cfg.Limits.EmbeddingRPS == 0 {
		cfg.Limits.EmbeddingRPS = 5
	}
	if cfg.Limits.LLMRPS == 0 {
		cfg.Limits.LLMRPS = 5
	}

	if cfg.Timeouts.EmbedSeconds == 0 {
		cfg.Timeouts.EmbedSeconds = 8
	}
	if cfg.Timeouts.RouteSeconds == 0 {
		cfg.Timeouts.RouteSeconds = 10
	}
}
