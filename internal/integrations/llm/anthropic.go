package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ticketlabeler/internal/httpx"
)

const anthropicMaxTokens = 256

type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropic builds a generator on the Anthropic Messages API. Extra
// request options (base URL, retries) are mainly for tests.
func NewAnthropic(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) (*AnthropicGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpx.NewClient(timeout)),
	}, opts...)
	return &AnthropicGenerator{
		client: anthropic.NewClient(reqOpts...),
		model:  modelOrDefault(model, defaultAnthropicModel),
	}, nil
}

func (g *AnthropicGenerator) Provider() string { return "anthropic" }
func (g *AnthropicGenerator) Model() string    { return g.model }

func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response model=%s size=%d tokens_in=%d tokens_out=%d", g.model, len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}
