package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_InvalidCron(t *testing.T) {
	if _, err := New(Config{Cron: "every tuesday"}, nil, nil); err == nil {
		t.Fatal("expected error for invalid cron")
	}
}

func TestNew_InvalidTimezone(t *testing.T) {
	if _, err := New(Config{Cron: "@daily", Timezone: "Mars/Olympus"}, nil, nil); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestRun_DisabledReturnsImmediately(t *testing.T) {
	// WHAT: An empty cron disables the scheduler without blocking.
	// WHY: The CLI runs the scheduler in an errgroup alongside the server.
	s, err := New(Config{}, func(context.Context) error {
		t.Error("refresh must not run")
		return nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled() {
		t.Fatal("should be disabled")
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run blocked while disabled")
	}
}

func TestNext(t *testing.T) {
	s, err := New(Config{Cron: "0 22 * * 0,3", Timezone: "UTC"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Monday 2025-12-15 12:00 UTC; next is Wednesday 22:00.
	from := time.Date(2025, 12, 15, 12, 0, 0, 0, time.UTC)
	want := time.Date(2025, 12, 17, 22, 0, 0, 0, time.UTC)
	if got := s.Next(from); !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestRun_OnStart(t *testing.T) {
	// WHAT: OnStart triggers a refresh immediately; Run returns after cancel.
	ran := make(chan struct{}, 1)
	s, err := New(Config{Cron: "@every 1h", OnStart: true}, func(context.Context) error {
		ran <- struct{}{}
		return errors.New("origin down")
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh not triggered on start")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRun_Ticks(t *testing.T) {
	var n atomic.Int32
	s, err := New(Config{Cron: "@every 1s"}, func(context.Context) error {
		n.Add(1)
		return nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if n.Load() < 1 {
		t.Fatal("expected at least one tick")
	}
}

func TestRun_SkipsOverlappingTicks(t *testing.T) {
	// WHAT: A tick firing while a refresh is still running is skipped.
	// WHY: Two concurrent refreshes would double the load on the origin.
	var running, maxRunning atomic.Int32
	s, err := New(Config{Cron: "@every 1s"}, func(ctx context.Context) error {
		cur := running.Add(1)
		defer running.Add(-1)
		if cur > maxRunning.Load() {
			maxRunning.Store(cur)
		}
		select {
		case <-time.After(2500 * time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3500*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if maxRunning.Load() != 1 {
		t.Fatalf("max concurrent refreshes = %d, want 1", maxRunning.Load())
	}
}
