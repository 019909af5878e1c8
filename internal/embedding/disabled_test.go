package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

func TestDisabledProvider(t *testing.T) {
	p := Disabled()

	if _, err := p.Embed(context.Background(), "pothole on MG Road"); !errors.Is(err, models.ErrEmbeddingUnavailable) {
		t.Errorf("Embed() error = %v, want ErrEmbeddingUnavailable", err)
	}
	if _, err := p.EmbedBatch(context.Background(), []string{"a", "b"}); !errors.Is(err, models.ErrEmbeddingUnavailable) {
		t.Errorf("EmbedBatch() error = %v, want ErrEmbeddingUnavailable", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
