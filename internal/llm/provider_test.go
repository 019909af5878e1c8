package llm

import (
	"testing"

	"github.com/RadieNoice/Namma-City/internal/config"
)

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for missing API key")
	}

	p, err := NewOpenAIProvider("test-key", "")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	if p.model != defaultOpenAIModel {
		t.Errorf("model = %q, want default %q", p.model, defaultOpenAIModel)
	}

	p, err = NewOpenAIProvider("test-key", "gpt-4o")
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	if p.model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", p.model)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
	}{
		{"missing key", config.LLMConfig{Provider: "openai"}, true},
		{"unknown provider", config.LLMConfig{Provider: "anthropic", APIKey: "k"}, true},
		{"openai", config.LLMConfig{Provider: "openai", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
