package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// LimitedProvider wraps a Provider with a client-side rate limiter so
// bulk operations cannot exhaust the embedding service quota.
type LimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps inner with an rps requests-per-second limit.
// An rps of zero or less disables limiting.
func NewLimitedProvider(inner Provider, rps int) Provider {
	if rps <= 0 {
		return inner
	}
	return &LimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Embed generates an embedding after waiting for limiter capacity
func (p *LimitedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.Embed(ctx, text)
}

// EmbedBatch generates embeddings after waiting for limiter capacity.
// A batch counts as one request against the limit.
func (p *LimitedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.EmbedBatch(ctx, texts)
}

// Close releases resources
func (p *LimitedProvider) Close() error {
	return p.inner.Close()
}
