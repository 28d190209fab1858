package nl2sql

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited caps the request rate towards a paid or shared generator.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a token bucket of rps requests per second.
// A non-positive rps returns next unchanged.
func NewRateLimited(next Generator, rps float64, burst int) Generator {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", &GenerationError{Provider: "rate-limiter", Transient: true, Err: err}
	}
	return r.next.Generate(ctx, prompt)
}
