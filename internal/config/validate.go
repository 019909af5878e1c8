package config

import (
	"fmt"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	switch cfg.Store.Driver {
	case "memory":
	case "sqlite":
		if cfg.Store.Path == "" {
			errs = append(errs, ValidationError{"store.path", "required for sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"store.driver", "must be 'sqlite' or 'memory'"})
	}

	switch cfg.Index.Backend {
	case "memory":
	case "qdrant":
		if cfg.Index.Qdrant.URL == "" {
			errs = append(errs, ValidationError{"index.qdrant.url", "required for qdrant backend"})
		}
	default:
		errs = append(errs, ValidationError{"index.backend", "must be 'memory' or 'qdrant'"})
	}

	if cfg.Index.Dimensions <= 0 {
		errs = append(errs, ValidationError{"index.dimensions", "must be positive"})
	}

	if p := cfg.Embedding.Primary.Provider; p != "" && p != "gemini" && p != "openai" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
	}
	if cfg.Embedding.Primary.Provider != "" && cfg.Embedding.Primary.APIKey == "" {
		errs = append(errs, ValidationError{"embedding.primary.api_key", "required"})
	}

	if p := cfg.LLM.Provider; p != "" && p != "gemini" && p != "openai" {
		errs = append(errs, ValidationError{"llm.provider", "must be 'gemini' or 'openai'"})
	}
	if cfg.LLM.Provider != "" && cfg.LLM.APIKey == "" {
		errs = append(errs, ValidationError{"llm.api_key", "required"})
	}

	if cfg.Dedup.Threshold < 0 || cfg.Dedup.Threshold > 1 {
		errs = append(errs, ValidationError{"dedup.threshold", "must be between 0 and 1"})
	}
	if cfg.Dedup.TopK < 1 {
		errs = append(errs, ValidationError{"dedup.top_k", "must be at least 1"})
	}

	if p := cfg.Routing.DefaultPriority; p != models.PriorityLow && p != models.PriorityMedium && p != models.PriorityHigh {
		errs = append(errs, ValidationError{"routing.default_priority", "must be 'low', 'medium', or 'high'"})
	}

	return errs
}
