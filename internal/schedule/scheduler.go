// Package schedule triggers refresh runs on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Config controls the scheduler behaviour.
type Config struct {
	// Cron is a standard 5-field expression or a descriptor such as
	// "@daily" or "@every 6h". Empty disables scheduling.
	Cron string `yaml:"cron"`
	// Timezone is an IANA location name. Default: local time.
	Timezone string `yaml:"timezone"`
	// OnStart triggers one refresh as soon as Run starts.
	OnStart bool `yaml:"on_start"`
}

// RefreshFunc performs one refresh run.
type RefreshFunc func(ctx context.Context) error

// Scheduler runs a RefreshFunc on schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	config   Config
	schedule cron.Schedule
	location *time.Location
	refresh  RefreshFunc
	logger   *slog.Logger
}

// New validates cfg and creates a Scheduler.
func New(cfg Config, fn RefreshFunc, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{config: cfg, refresh: fn, logger: logger, location: time.Local}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("schedule: timezone %q: %w", cfg.Timezone, err)
		}
		s.location = loc
	}
	if cfg.Cron != "" {
		sched, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return nil, fmt.Errorf("schedule: cron %q: %w", cfg.Cron, err)
		}
		s.schedule = sched
	}
	return s, nil
}

// Enabled reports whether a cron expression is configured.
func (s *Scheduler) Enabled() bool { return s.schedule != nil }

// Next returns the next activation after t, or the zero time when disabled.
func (s *Scheduler) Next(t time.Time) time.Time {
	if s.schedule == nil {
		return time.Time{}
	}
	return s.schedule.Next(t.In(s.location))
}

// Run starts the scheduler loop. Blocks until ctx is cancelled and any
// in-flight refresh has returned. Returns immediately when disabled.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("scheduler: disabled")
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	id := c.Schedule(s.schedule, cron.FuncJob(func() { s.tick(ctx) }))

	s.logger.Info("scheduler: started", "cron", s.config.Cron, "timezone", s.location.String())
	c.Start()
	if s.config.OnStart {
		c.Entry(id).WrappedJob.Run()
	}

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler: stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.refresh(ctx); err != nil {
		s.logger.Warn("scheduler: refresh failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Info("scheduler: refresh done", "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("scheduler: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("scheduler: "+msg, append(keysAndValues, "error", err)...)
}
