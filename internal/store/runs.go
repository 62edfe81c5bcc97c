package store

import (
	"context"
	"database/sql"
)

// Run statuses.
const (
	RunSuccess = "success"
	RunFailed  = "failed"
	RunBlocked = "blocked"
)

// Run is one refresh run of the fetch orchestrator.
type Run struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Links        int    `json:"links"`
	Pages        int    `json:"pages"`
	Parsed       int    `json:"parsed"`
	Saved        int    `json:"saved"`
	Duplicates   int    `json:"duplicates"`
	Failed       int    `json:"failed"`
	Skipped      int    `json:"skipped"`
	SnapshotDraw *int   `json:"snapshot_draw,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	StartedAt    int64  `json:"started_at"`
	FinishedAt   int64  `json:"finished_at"`
}

// InsertRun records a finished run.
func (s *Store) InsertRun(ctx context.Context, r *Run) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO fetch_runs (id, status, links, pages, parsed, saved, duplicates, failed,
		                        skipped, snapshot_draw, error_message, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Status, r.Links, r.Pages, r.Parsed, r.Saved, r.Duplicates, r.Failed, r.Skipped,
		r.SnapshotDraw, r.ErrorMessage, r.StartedAt, r.FinishedAt,
	)
	return err
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, status, links, pages, parsed, saved, duplicates, failed,
		       skipped, snapshot_draw, error_message, started_at, finished_at
		FROM fetch_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var snap sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Status, &r.Links, &r.Pages, &r.Parsed, &r.Saved,
			&r.Duplicates, &r.Failed, &r.Skipped, &snap, &r.ErrorMessage, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		if snap.Valid {
			v := int(snap.Int64)
			r.SnapshotDraw = &v
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
