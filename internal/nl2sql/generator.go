package nl2sql

import (
	"context"
	"fmt"
)

// Generator turns a rendered prompt into free-form model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationError is any failure of the text generator. Transient marks
// failures a caller could retry (rate limits, 5xx, timeouts); the pipeline
// itself never retries.
type GenerationError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("text generation failed: %v", e.Err)
	}
	return fmt.Sprintf("text generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
