// Package classifier turns a ticket's summary and description into at most
// two labels from a closed vocabulary using a text-generation backend.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ticketlabeler/internal/domain"
	"ticketlabeler/internal/integrations/llm"
)

type Classifier struct {
	gen       llm.Generator
	vocab     *domain.Vocabulary
	maxLabels int
}

func New(gen llm.Generator, vocab *domain.Vocabulary, maxLabels int) *Classifier {
	if vocab == nil {
		vocab = domain.DefaultVocabulary()
	}
	if maxLabels < 1 || maxLabels > domain.MaxLabelsPerTicket {
		maxLabels = domain.MaxLabelsPerTicket
	}
	return &Classifier{gen: gen, vocab: vocab, maxLabels: maxLabels}
}

func (c *Classifier) Provider() string { return c.gen.Provider() }
func (c *Classifier) Model() string    { return c.gen.Model() }

// CheckConnectivity pings the backend with a throwaway prompt.
func (c *Classifier) CheckConnectivity(ctx context.Context) error {
	if err := llm.Ping(ctx, c.gen); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// Classify never returns an error. Every failure yields an empty result
// whose Reason says what went wrong.
func (c *Classifier) Classify(ctx context.Context, summary string, description *string) domain.ClassificationResult {
	if err := c.CheckConnectivity(ctx); err != nil {
		log.Printf("classifier backend unavailable provider=%s model=%s err=%v", c.gen.Provider(), c.gen.Model(), err)
		return domain.ClassificationResult{Reason: err}
	}

	prompt := BuildPrompt(c.vocab, summary, description, c.maxLabels)
	raw, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("classifier generate failed provider=%s model=%s err=%v", c.gen.Provider(), c.gen.Model(), err)
		return domain.ClassificationResult{Reason: fmt.Errorf("generate: %w", err)}
	}

	labels, err := ParseLabels(raw, c.vocab, c.maxLabels)
	switch {
	case errors.Is(err, domain.ErrParse):
		log.Printf("classifier could not parse model output: %v", err)
		return domain.ClassificationResult{Reason: err}
	case errors.Is(err, domain.ErrValidation):
		log.Printf("classifier invalid labels received: %v", err)
		return domain.ClassificationResult{Reason: err}
	case err != nil:
		log.Printf("classifier parse failed: %v", err)
		return domain.ClassificationResult{Reason: err}
	}
	return domain.ClassificationResult{Labels: labels}
}
