// Package scrape orchestrates one refresh run: fetch the index, enumerate
// result links newest first, fetch and parse each page, store every record
// and publish the newest draw as the snapshot.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/quinimind/draw"
	"github.com/hazyhaar/quinimind/extract"
	"github.com/hazyhaar/quinimind/idgen"
	"github.com/hazyhaar/quinimind/internal/fetch"
	"github.com/hazyhaar/quinimind/internal/store"
)

// DefaultIndexURL is the results site home page.
const DefaultIndexURL = "https://www.quini-6-resultados.com.ar/"

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Store is the subset of the draw store used by a run.
type Store interface {
	Save(ctx context.Context, r draw.Record) (bool, error)
	LatestDrawID(ctx context.Context) (int, bool, error)
	InsertRun(ctx context.Context, r *store.Run) error
}

// Publisher receives the newest draw of a run.
type Publisher interface {
	Publish(snap draw.Snapshot) error
}

// Config configures the link source.
type Config struct {
	IndexURL     string        `yaml:"index_url"`
	LinkContains []string      `yaml:"link_contains"`
	MaxLinks     int           `yaml:"max_links"`   // 0 = all links
	Incremental  bool          `yaml:"incremental"` // skip links older than the newest stored draw
	Delay        time.Duration `yaml:"delay"`       // between page requests. Default: 500ms, negative disables.
}

func (c *Config) defaults() {
	if c.IndexURL == "" {
		c.IndexURL = DefaultIndexURL
	}
	if len(c.LinkContains) == 0 {
		c.LinkContains = extract.DefaultLinkContains
	}
	if c.Delay < 0 {
		c.Delay = 0
	} else if c.Delay == 0 {
		c.Delay = 500 * time.Millisecond
	}
}

// Report summarises a run.
type Report struct {
	RunID        string    `json:"run_id"`
	Links        int       `json:"links"`
	Pages        int       `json:"pages"`
	Parsed       int       `json:"parsed"`
	Saved        int       `json:"saved"`
	Duplicates   int       `json:"duplicates"`
	Failed       int       `json:"failed"`
	Skipped      int       `json:"skipped"`
	SnapshotDraw int       `json:"snapshot_draw,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Error        string    `json:"error,omitempty"`
}

// Runner executes refresh runs. Runs are sequential; a Runner must not be
// used by two goroutines at once.
type Runner struct {
	config    Config
	fetcher   Fetcher
	store     Store
	publisher Publisher
	logger    *slog.Logger
	newID     idgen.Generator
}

// New creates a Runner. publisher may be nil.
func New(cfg Config, f Fetcher, s Store, p Publisher, logger *slog.Logger) *Runner {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config:    cfg,
		fetcher:   f,
		store:     s,
		publisher: p,
		logger:    logger,
		newID:     idgen.Prefixed("run_", idgen.Default),
	}
}

// Run performs one refresh. The returned error is non-nil when the index
// could not be fetched, the origin blocked the run, or ctx was cancelled.
// Per-page problems are logged and counted, never returned. The report is
// always non-nil and is recorded in the run log.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: r.newID(), StartedAt: time.Now()}
	log := r.logger.With("run_id", rep.RunID)
	log.Info("scrape: run started", "index_url", r.config.IndexURL)

	err := r.run(ctx, log, rep)
	rep.FinishedAt = time.Now()
	if err != nil {
		rep.Error = err.Error()
		log.Error("scrape: run failed", "error", err)
	} else {
		log.Info("scrape: run finished",
			"links", rep.Links, "pages", rep.Pages, "parsed", rep.Parsed,
			"saved", rep.Saved, "duplicates", rep.Duplicates,
			"failed", rep.Failed, "skipped", rep.Skipped,
			"snapshot_draw", rep.SnapshotDraw,
			"duration", rep.FinishedAt.Sub(rep.StartedAt))
	}

	if rerr := r.store.InsertRun(context.WithoutCancel(ctx), rep.run(err)); rerr != nil {
		log.Warn("scrape: record run", "error", rerr)
	}
	return rep, err
}

func (r *Runner) run(ctx context.Context, log *slog.Logger, rep *Report) error {
	links, err := r.links(ctx, log)
	if err != nil {
		return err
	}
	rep.Links = len(links)

	published := false
	for i, link := range links {
		if i > 0 {
			if err := sleepCtx(ctx, r.config.Delay); err != nil {
				return err
			}
		}

		d, err := r.page(ctx, log, link, rep)
		if err != nil {
			return err
		}
		if d == nil {
			continue
		}

		r.save(ctx, log, d, rep)

		if !published && len(d.Results) > 0 {
			published = true
			r.publish(log, d, rep)
		}
	}
	return nil
}

// links fetches the index and returns the result links to visit.
func (r *Runner) links(ctx context.Context, log *slog.Logger) ([]string, error) {
	res, err := r.fetcher.Fetch(ctx, r.config.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: index: %w", err)
	}
	doc, err := extract.ParseHTML(res.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: index: %w", err)
	}
	base, err := url.Parse(res.URL)
	if err != nil || res.URL == "" {
		base, _ = url.Parse(r.config.IndexURL)
	}

	links := extract.ResultLinks(doc, base, r.config.LinkContains)
	found := len(links)

	if r.config.Incremental {
		latest, ok, err := r.store.LatestDrawID(ctx)
		if err != nil {
			log.Warn("scrape: latest draw id", "error", err)
		} else if ok {
			kept := links[:0]
			for _, l := range links {
				if n, has := extract.LinkDrawNumber(l); has && n < latest {
					continue
				}
				kept = append(kept, l)
			}
			links = kept
		}
	}
	if r.config.MaxLinks > 0 && len(links) > r.config.MaxLinks {
		links = links[:r.config.MaxLinks]
	}

	log.Info("scrape: links found", "found", found, "selected", len(links))
	return links, nil
}

// page fetches and parses one result page. It returns (nil, nil) when the
// page is skipped, and an error only when the run must stop.
func (r *Runner) page(ctx context.Context, log *slog.Logger, link string, rep *Report) (*draw.Draw, error) {
	log = log.With("url", link)

	res, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		if errors.Is(err, fetch.ErrBlocked) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("scrape: fetch failed, skipping", "error", err)
		rep.Skipped++
		return nil, nil
	}
	rep.Pages++
	log.Debug("scrape: page fetched", "final_url", res.URL, "bytes", len(res.Body), "hash", res.Hash)

	doc, err := extract.ParseHTML(res.Body)
	if err != nil {
		log.Warn("scrape: parse html, skipping", "error", err)
		rep.Skipped++
		return nil, nil
	}

	d, err := extract.ParseDraw(doc)
	if err != nil {
		if errors.Is(err, extract.ErrNoDrawHeader) {
			log.Debug("scrape: no draw header, skipping")
		} else {
			log.Warn("scrape: parse draw, skipping", "error", err)
		}
		rep.Skipped++
		return nil, nil
	}
	rep.Parsed++

	for _, m := range d.Missing {
		log.Warn("scrape: modality not extracted", "draw_id", d.ID, "modality", m.Label())
	}
	return d, nil
}

func (r *Runner) save(ctx context.Context, log *slog.Logger, d *draw.Draw, rep *Report) {
	for _, rec := range d.Records() {
		inserted, err := r.store.Save(ctx, rec)
		switch {
		case err != nil:
			rep.Failed++
			log.Error("scrape: save failed", "draw_id", rec.DrawID, "modality", rec.Modality.Label(), "error", err)
		case !inserted:
			rep.Duplicates++
			log.Debug("scrape: duplicate draw", "draw_id", rec.DrawID, "modality", rec.Modality.Label())
		default:
			rep.Saved++
			log.Debug("scrape: draw saved", "draw_id", rec.DrawID, "modality", rec.Modality.Label())
		}
	}
}

func (r *Runner) publish(log *slog.Logger, d *draw.Draw, rep *Report) {
	if r.publisher == nil {
		rep.SnapshotDraw = d.ID
		return
	}
	if err := r.publisher.Publish(d.Snapshot()); err != nil {
		log.Error("scrape: publish snapshot", "draw_id", d.ID, "error", err)
		return
	}
	rep.SnapshotDraw = d.ID
	log.Info("scrape: snapshot published", "draw_id", d.ID, "modes", len(d.Results))
}

// run converts the report into a run-log row.
func (rep *Report) run(err error) *store.Run {
	status := store.RunSuccess
	switch {
	case errors.Is(err, fetch.ErrBlocked):
		status = store.RunBlocked
	case err != nil:
		status = store.RunFailed
	}
	row := &store.Run{
		ID:           rep.RunID,
		Status:       status,
		Links:        rep.Links,
		Pages:        rep.Pages,
		Parsed:       rep.Parsed,
		Saved:        rep.Saved,
		Duplicates:   rep.Duplicates,
		Failed:       rep.Failed,
		Skipped:      rep.Skipped,
		ErrorMessage: rep.Error,
		StartedAt:    rep.StartedAt.UnixMilli(),
		FinishedAt:   rep.FinishedAt.UnixMilli(),
	}
	if rep.SnapshotDraw > 0 {
		v := rep.SnapshotDraw
		row.SnapshotDraw = &v
	}
	return row
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
