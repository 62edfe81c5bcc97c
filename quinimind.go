// Package quinimind collects Quini 6 lottery results and serves statistics
// over them.
//
// The pipeline:
//
//	index page → result links → result pages → extract → store → analysis
//
// Each refresh walks the results site newest first, stores every
// (draw, modality) record once and publishes the newest draw as a JSON
// snapshot. Statistics and predictions are computed on demand from the
// stored history of one modality.
//
// Usage:
//
//	svc, err := quinimind.New(cfg, logger)
//	defer svc.Close()
//	report, err := svc.Refresh(ctx)
//	hot, err := svc.Hot(ctx, draw.Traditional, 50)
//	err = svc.Run(ctx) // scheduled refreshes until ctx ends
package quinimind

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hazyhaar/quinimind/analysis"
	"github.com/hazyhaar/quinimind/draw"
	"github.com/hazyhaar/quinimind/internal/fetch"
	"github.com/hazyhaar/quinimind/internal/schedule"
	"github.com/hazyhaar/quinimind/internal/scrape"
	"github.com/hazyhaar/quinimind/internal/snapshot"
	"github.com/hazyhaar/quinimind/internal/store"
)

// ErrRefreshInProgress is returned by Refresh while another refresh runs.
var ErrRefreshInProgress = errors.New("quinimind: refresh already in progress")

// Service is the main quinimind orchestrator.
type Service struct {
	store     *store.Store
	runner    *scrape.Runner
	scheduler *schedule.Scheduler
	logger    *slog.Logger
	config    *Config

	refreshMu sync.Mutex

	rngMu sync.Mutex
	rng   analysis.Source
}

// New creates a Service. Opens the SQLite database and builds the fetcher,
// the refresh runner, the snapshot writer and the scheduler.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	svc, err := newService(cfg, s, fetch.New(cfg.Fetch), logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	return svc, nil
}

func newService(cfg *Config, s *store.Store, f scrape.Fetcher, logger *slog.Logger) (*Service, error) {
	svc := &Service{
		store:  s,
		logger: logger,
		config: cfg,
		rng:    analysis.NewSource(cfg.Predict.Seed),
	}

	var pub scrape.Publisher
	if cfg.SnapshotPath != "-" {
		pub = snapshot.NewFile(cfg.SnapshotPath)
	}
	svc.runner = scrape.New(cfg.Source, f, s, pub, logger)

	sched, err := schedule.New(cfg.Schedule, svc.scheduledRefresh, logger)
	if err != nil {
		return nil, err
	}
	svc.scheduler = sched
	return svc, nil
}

// Run runs the refresh scheduler until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.scheduler.Run(ctx)
}

// Close closes the database.
func (s *Service) Close() error {
	return s.store.Close()
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Refresh performs one refresh run. Only one refresh runs at a time; a
// concurrent call fails fast with ErrRefreshInProgress.
func (s *Service) Refresh(ctx context.Context) (*scrape.Report, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()
	return s.runner.Run(ctx)
}

func (s *Service) scheduledRefresh(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	if errors.Is(err, ErrRefreshInProgress) {
		s.logger.Info("quinimind: scheduled refresh skipped, manual refresh running")
		return nil
	}
	return err
}

// Hot returns the most frequent numbers of modality m over its lastN newest
// draws. lastN <= 0 uses the configured window.
func (s *Service) Hot(ctx context.Context, m draw.Modality, lastN int) ([]int, error) {
	records, err := s.store.QueryByModality(ctx, m)
	if err != nil {
		return nil, err
	}
	if lastN <= 0 {
		lastN = s.config.Analysis.HotWindow
	}
	return analysis.HotNumbers(records, lastN, s.config.Analysis.HotCount), nil
}

// Cold returns the numbers of modality m absent for the longest time.
func (s *Service) Cold(ctx context.Context, m draw.Modality) ([]int, error) {
	records, err := s.store.QueryByModality(ctx, m)
	if err != nil {
		return nil, err
	}
	return analysis.ColdNumbers(records, s.config.Analysis.ColdCount), nil
}

// Heatmap returns one row per number for modality m, or nil when m has no
// history.
func (s *Service) Heatmap(ctx context.Context, m draw.Modality) ([]analysis.HeatmapRow, error) {
	records, err := s.store.QueryByModality(ctx, m)
	if err != nil {
		return nil, err
	}
	return analysis.Heatmap(records, s.config.Analysis.Thresholds), nil
}

// Predict composes six numbers from the hot and cold lists of modality m.
func (s *Service) Predict(ctx context.Context, m draw.Modality) ([]int, error) {
	records, err := s.store.QueryByModality(ctx, m)
	if err != nil {
		return nil, err
	}
	a := s.config.Analysis
	hot := analysis.HotNumbers(records, a.HotWindow, a.HotCount)
	cold := analysis.ColdNumbers(records, a.ColdCount)

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return analysis.Predict(hot, cold, s.rng), nil
}

// Latest returns the snapshot of the newest stored draw, or nil when the
// store is empty.
func (s *Service) Latest(ctx context.Context) (*draw.Snapshot, error) {
	d, err := s.store.LatestDraw(ctx)
	if err != nil || d == nil {
		return nil, err
	}
	snap := d.Snapshot()
	return &snap, nil
}

// History returns the limit newest draws.
func (s *Service) History(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	return s.store.History(ctx, limit)
}

// Runs returns the latest refresh runs.
func (s *Service) Runs(ctx context.Context, limit int) ([]*store.Run, error) {
	return s.store.RecentRuns(ctx, limit)
}

// Stats summarises the stored history.
type Stats struct {
	Records    int                      `json:"records"`
	LatestDraw int                      `json:"latest_draw,omitempty"`
	Modalities map[string]ModalityStats `json:"modalities"`
}

// ModalityStats summarises one modality.
type ModalityStats struct {
	Records int   `json:"records"`
	Hot     []int `json:"hot"`
	Cold    []int `json:"cold"`
}

// Stats returns record counts and hot/cold lists per modality.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Records: n, Modalities: make(map[string]ModalityStats, len(draw.Modalities))}
	if id, ok, err := s.store.LatestDrawID(ctx); err != nil {
		return nil, err
	} else if ok {
		st.LatestDraw = id
	}

	a := s.config.Analysis
	for _, m := range draw.Modalities {
		records, err := s.store.QueryByModality(ctx, m)
		if err != nil {
			return nil, err
		}
		st.Modalities[m.Label()] = ModalityStats{
			Records: len(records),
			Hot:     analysis.HotNumbers(records, a.HotWindow, a.HotCount),
			Cold:    analysis.ColdNumbers(records, a.ColdCount),
		}
	}
	return st, nil
}
