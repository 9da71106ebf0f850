// Package pipeline runs one reconciliation pass: check both dependencies,
// fetch every ticket, classify each one and add the labels it is missing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ticketlabeler/internal/domain"
)

// TicketStore is the issue store gateway. AddLabels is additive only.
type TicketStore interface {
	CheckConnectivity(ctx context.Context) error
	FetchAll(ctx context.Context, filter string) ([]domain.Ticket, error)
	AddLabels(ctx context.Context, key string, labels []string) error
}

type Classifier interface {
	CheckConnectivity(ctx context.Context) error
	Classify(ctx context.Context, summary string, description *string) domain.ClassificationResult
}

// Recorder receives every successful label application. Errors are logged
// and never fail the ticket.
type Recorder interface {
	RecordLabels(ctx context.Context, app LabelApplication) error
}

type LabelApplication struct {
	TicketKey string
	Labels    []string
	Provider  string
	Model     string
	AppliedAt time.Time
}

// PreconditionError means a dependency failed its startup connectivity check and no
// ticket was processed.
type PreconditionError struct {
	Dependency string
	Err        error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s connectivity check failed: %v", e.Dependency, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

const (
	DependencyStore   = "ticket store"
	DependencyBackend = "text generation backend"
)

type Options struct {
	Filter   string
	DryRun   bool
	Workers  int
	Provider string
	Model    string
	Recorder Recorder
	Now      func() time.Time
}

type Pipeline struct {
	store      TicketStore
	classifier Classifier
	opts       Options
}

func New(store TicketStore, classifier Classifier, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{store: store, classifier: classifier, opts: opts}
}

// Outcome is the terminal state of one ticket.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNoOp
	OutcomeUnclassified
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNoOp:
		return "noop"
	case OutcomeUnclassified:
		return "unclassified"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type ticketResult struct {
	outcome Outcome
	// labels written, or that would have been written in dry-run mode
	delta  []string
	dryRun bool
	// labels were produced but writing them failed
	applyFailed bool
}

// Run executes one full pass. The returned error is non-nil only for
// precondition and fetch failures; per-ticket problems are counted.
func (p *Pipeline) Run(ctx context.Context) (domain.RunStatistics, error) {
	var stats domain.RunStatistics

	if err := p.store.CheckConnectivity(ctx); err != nil {
		return stats, &PreconditionError{Dependency: DependencyStore, Err: err}
	}
	if err := p.classifier.CheckConnectivity(ctx); err != nil {
		return stats, &PreconditionError{Dependency: DependencyBackend, Err: err}
	}

	tickets, err := p.store.FetchAll(ctx, p.opts.Filter)
	if err != nil {
		return stats, fmt.Errorf("fetching tickets: %w", err)
	}
	log.Printf("pipeline fetched tickets=%d filter=%q dry_run=%t workers=%d", len(tickets), p.opts.Filter, p.opts.DryRun, p.opts.Workers)
	if len(tickets) == 0 {
		log.Printf("pipeline nothing to do")
		return stats, nil
	}

	if p.opts.Workers == 1 {
		for i, t := range tickets {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			log.Printf("pipeline ticket %d/%d key=%s", i+1, len(tickets), t.Key)
			stats = accumulate(stats, p.processTicket(ctx, t))
		}
		return stats, nil
	}
	return p.runConcurrent(ctx, tickets)
}

func (p *Pipeline) runConcurrent(ctx context.Context, tickets []domain.Ticket) (domain.RunStatistics, error) {
	var (
		mu    sync.Mutex
		stats domain.RunStatistics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, t := range tickets {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log.Printf("pipeline ticket %d/%d key=%s", i+1, len(tickets), t.Key)
			res := p.processTicket(gctx, t)
			mu.Lock()
			stats = accumulate(stats, res)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return stats, err
}

func (p *Pipeline) processTicket(ctx context.Context, t domain.Ticket) ticketResult {
	res := p.classifier.Classify(ctx, t.Summary, t.Description)
	if res.Empty() {
		if res.Reason == nil || errors.Is(res.Reason, domain.ErrParse) || errors.Is(res.Reason, domain.ErrValidation) {
			log.Printf("pipeline ticket unclassified key=%s reason=%v", t.Key, res.Reason)
			return ticketResult{outcome: OutcomeUnclassified}
		}
		log.Printf("pipeline ticket failed key=%s stage=classify err=%v", t.Key, res.Reason)
		return ticketResult{outcome: OutcomeFailed}
	}

	delta := domain.LabelDelta(t.Labels, res.Labels)
	if len(delta) == 0 {
		log.Printf("pipeline ticket labels already present key=%s labels=%v", t.Key, res.Strings())
		return ticketResult{outcome: OutcomeNoOp}
	}

	if p.opts.DryRun {
		log.Printf("pipeline dry run key=%s would_add=%v", t.Key, delta)
		return ticketResult{outcome: OutcomeApplied, delta: delta, dryRun: true}
	}

	if err := p.store.AddLabels(ctx, t.Key, delta); err != nil {
		log.Printf("pipeline ticket failed key=%s stage=apply err=%v", t.Key, err)
		return ticketResult{outcome: OutcomeFailed, applyFailed: true}
	}
	log.Printf("pipeline labels applied key=%s labels=%v", t.Key, delta)

	if p.opts.Recorder != nil {
		app := LabelApplication{
			TicketKey: t.Key,
			Labels:    delta,
			Provider:  p.opts.Provider,
			Model:     p.opts.Model,
			AppliedAt: p.opts.Now(),
		}
		if err := p.opts.Recorder.RecordLabels(ctx, app); err != nil {
			log.Printf("pipeline audit record failed key=%s err=%v", t.Key, err)
		}
	}
	return ticketResult{outcome: OutcomeApplied, delta: delta}
}

func accumulate(stats domain.RunStatistics, res ticketResult) domain.RunStatistics {
	stats.Seen++
	switch res.outcome {
	case OutcomeApplied:
		stats.Classified++
		if res.dryRun {
			stats.DryRunLabels += len(res.delta)
		} else {
			stats.LabelsApplied += len(res.delta)
		}
	case OutcomeNoOp:
		stats.Classified++
		stats.NoOp++
	case OutcomeUnclassified:
		stats.Errored++
		stats.Unclassified++
	case OutcomeFailed:
		if res.applyFailed {
			stats.Classified++
		}
		stats.Errored++
		stats.Failed++
	}
	return stats
}
