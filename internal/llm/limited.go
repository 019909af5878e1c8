package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// LimitedProvider wraps a Provider with a client-side rate limiter.
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

// Complete generates a completion after waiting for limiter capacity
func (p *LimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.Complete(ctx, prompt)
}

// CompleteWithSystem generates a completion after waiting for limiter capacity
func (p *LimitedProvider) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.CompleteWithSystem(ctx, system, prompt)
}

// Close releases resources
func (p *LimitedProvider) Close() error {
	return p.inner.Close()
}
