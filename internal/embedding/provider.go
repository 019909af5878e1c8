package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// PrepareReportText combines description and location hint for embedding
func PrepareReportText(description, location string) string {
	text := fmt.Sprintf("Report: %s", description)
	if location != "" {
		text = fmt.Sprintf("%s\n\nLocation: %s", text, location)
	}

	// Truncate to ~6000 chars (~1500 tokens) to stay within limits
	if len(text) > 6000 {
		text = text[:6000] + "..."
	}

	return text
}

// CleanText removes excessive whitespace from text
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// checkTexts rejects empty or whitespace-only inputs before any
// network call is made.
func checkTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts to embed", models.ErrInvalidInput)
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: empty text", models.ErrInvalidInput)
		}
	}
	return nil
}
