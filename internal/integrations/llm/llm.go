// Package llm hides the text-generation backends behind one Generator
// contract: a prompt goes in, one free-text completion comes out.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	defaultOllamaModel    = "gemma3:latest"
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultGeminiModel    = "gemini-2.5-flash"

	pingPrompt = "Test"
)

// Generator produces a single non-streaming completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

type Options struct {
	Provider        string
	Model           string
	OllamaURL       string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	Timeout         time.Duration
}

// New builds the Generator for opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "ollama":
		return NewOllama(opts.OllamaURL, opts.Model, opts.Timeout), nil
	case "anthropic":
		return NewAnthropic(opts.AnthropicAPIKey, opts.Model, opts.Timeout)
	case "openai":
		return NewOpenAI(opts.OpenAIAPIKey, opts.Model, opts.OpenAIBaseURL, opts.Timeout)
	case "gemini":
		return NewGemini(ctx, opts.GeminiAPIKey, opts.Model, opts.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// Ping sends a throwaway prompt to check the backend answers at all.
func Ping(ctx context.Context, g Generator) error {
	if _, err := g.Generate(ctx, pingPrompt); err != nil {
		return fmt.Errorf("%s ping: %w", g.Provider(), err)
	}
	return nil
}

func modelOrDefault(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}
