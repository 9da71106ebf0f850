// Package schedule repeats full labeling passes on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Pass runs one complete labeling pass.
type Pass func(ctx context.Context) error

type Scheduler struct {
	expr  string
	sched cron.Schedule
	now   func() time.Time
	// after is time.After, replaceable in tests.
	after func(time.Duration) <-chan time.Time
}

// Parse accepts a standard 5-field cron expression (minute hour
// day-of-month month day-of-week), e.g. "0 9 * * 1-5".
func Parse(expr string) (*Scheduler, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("run_schedule is empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid run_schedule '%s': %w", expr, err)
	}
	return &Scheduler{expr: expr, sched: sched, now: time.Now, after: time.After}, nil
}

func (s *Scheduler) Next(from time.Time) time.Time {
	return s.sched.Next(from)
}

// Run calls pass on every tick until ctx is cancelled. A failed pass is
// logged and the next tick still runs.
func (s *Scheduler) Run(ctx context.Context, pass Pass) error {
	log.Printf("schedule started cron=%q", s.expr)
	for {
		now := s.now()
		next := s.sched.Next(now)
		wait := next.Sub(now)
		log.Printf("schedule next pass at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Second))

		select {
		case <-ctx.Done():
			log.Printf("schedule stopped: %v", ctx.Err())
			return ctx.Err()
		case <-s.after(wait):
		}

		if err := pass(ctx); err != nil {
			log.Printf("schedule pass error: %v", err)
		}
	}
}
