package embedding

import (
	"context"
	"fmt"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// DisabledProvider stands in when no embedding provider is configured.
// Every call fails with the embedding-unavailable error, which the
// engine's degradation paths already handle: submissions proceed as
// novel and nothing is indexed.
type DisabledProvider struct{}

// Disabled returns the stand-in provider.
func Disabled() *DisabledProvider {
	return &DisabledProvider{}
}

func (*DisabledProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("%w: no embedding provider configured", models.ErrEmbeddingUnavailable)
}

func (*DisabledProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: no embedding provider configured", models.ErrEmbeddingUnavailable)
}

func (*DisabledProvider) Close() error {
	return nil
}
