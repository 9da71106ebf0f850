package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"ticketlabeler/internal/httpx"
)

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpx.NewClient(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		model:  modelOrDefault(model, defaultGeminiModel),
	}, nil
}

func (g *GeminiGenerator) Provider() string { return "gemini" }
func (g *GeminiGenerator) Model() string    { return g.model }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("llm gemini error: %v", err)
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in Gemini response")
	}
	log.Printf("llm gemini response model=%s size=%d", g.model, len(text))
	return text, nil
}
