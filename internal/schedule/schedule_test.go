package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{expr: "0 9 * * 1-5"},
		{expr: "*/15 * * * *"},
		{expr: "  0 9 * * 5  "},
		{expr: "", wantErr: true},
		{expr: "0 9 * *", wantErr: true},
		{expr: "every morning", wantErr: true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) err=%v, wantErr=%t", tt.expr, err, tt.wantErr)
		}
	}
}

func TestNext(t *testing.T) {
	s, err := Parse("0 9 * * 1-5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Friday 10:00 -> Monday 09:00
	from := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	want := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("Next(%v) = %v, want %v", from, got, want)
	}
}

func TestRunInvokesPassesUntilCancelled(t *testing.T) {
	s, err := Parse("* * * * *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ticks := make(chan time.Time)
	s.after = func(time.Duration) <-chan time.Time { return ticks }

	ctx, cancel := context.WithCancel(context.Background())
	passes := 0
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			passes++
			if passes == 1 {
				return errors.New("store unreachable")
			}
			if passes == 3 {
				cancel()
			}
			return nil
		})
	}()

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop after cancel")
	}
	if passes != 3 {
		t.Fatalf("expected 3 passes, got %d", passes)
	}
}

func TestRunStopsWhenAlreadyCancelled(t *testing.T) {
	s, err := Parse("0 0 1 1 *")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	if err := s.Run(ctx, func(context.Context) error { called = true; return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatalf("pass must not run after cancel")
	}
}
