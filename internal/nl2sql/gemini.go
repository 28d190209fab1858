package nl2sql

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/genai"
)

const geminiProvider = "gemini"

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	// Timeout bounds a single GenerateContent call. Zero leaves only the
	// caller's deadline.
	Timeout time.Duration

	// BaseURL overrides the Gemini API base URL for proxies and tests.
	BaseURL string
}

type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	temperature := g.temperature
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
			Temperature:    &temperature,
		},
	)
	if err != nil {
		return "", classifyGeminiErr(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Provider: geminiProvider, Err: errors.New("model returned empty content")}
	}
	return text, nil
}

func (g *GeminiGenerator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func classifyGeminiErr(err error) error {
	if err == nil {
		return nil
	}
	transient := false
	var apiErr genai.APIError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		transient = apiErr.Code == 429 || apiErr.Code/100 == 5
	case errors.As(err, &netErr):
		transient = netErr.Timeout()
	case errors.Is(err, context.DeadlineExceeded):
		transient = true
	}
	return &GenerationError{Provider: geminiProvider, Transient: transient, Err: err}
}
