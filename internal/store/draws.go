package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/quinimind/dbopen"
	"github.com/hazyhaar/quinimind/draw"
)

const drawColumns = `draw_id, draw_date, modality, n1, n2, n3, n4, n5, n6`

// Save inserts r unless a record with the same (draw id, modality) exists.
// It reports whether a row was inserted; a duplicate is not an error.
// Invalid records are rejected with draw.ErrInvalidRecord.
func (s *Store) Save(ctx context.Context, r draw.Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}

	var inserted bool
	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO draws (`+drawColumns+`, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(draw_id, modality) DO NOTHING`,
			r.DrawID, r.Date, r.Modality.Label(),
			r.Numbers[0], r.Numbers[1], r.Numbers[2], r.Numbers[3], r.Numbers[4], r.Numbers[5],
			time.Now().UnixMilli(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store: save draw %d %s: %w", r.DrawID, r.Modality, err)
	}
	return inserted, nil
}

// QueryByModality returns every record of modality m. Order is not part of
// the contract.
func (s *Store) QueryByModality(ctx context.Context, m draw.Modality) ([]draw.Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+drawColumns+` FROM draws WHERE modality = ?`, m.Label())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []draw.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestDrawID returns the highest stored draw id across modalities.
// ok is false when the store is empty.
func (s *Store) LatestDrawID(ctx context.Context) (id int, ok bool, err error) {
	var v sql.NullInt64
	if err := s.DB.QueryRowContext(ctx, `SELECT MAX(draw_id) FROM draws`).Scan(&v); err != nil {
		return 0, false, err
	}
	if !v.Valid {
		return 0, false, nil
	}
	return int(v.Int64), true, nil
}

// LatestDraw assembles every stored modality of the newest draw.
// Returns nil when the store is empty.
func (s *Store) LatestDraw(ctx context.Context) (*draw.Draw, error) {
	id, ok, err := s.LatestDrawID(ctx)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+drawColumns+` FROM draws WHERE draw_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d := &draw.Draw{ID: id, Results: make(map[draw.Modality][draw.Size]int)}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if d.Date == "" {
			d.Date = r.Date
		}
		d.Results[r.Modality] = r.Numbers
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range draw.Modalities {
		if _, ok := d.Results[m]; !ok {
			d.Missing = append(d.Missing, m)
		}
	}
	return d, nil
}

// HistoryEntry is one draw in the history listing, represented by the
// Traditional numbers when stored, else by the first stored modality.
type HistoryEntry struct {
	ID       int           `json:"id"`
	Date     string        `json:"date"`
	Modality draw.Modality `json:"modality"`
	Numbers  []int         `json:"numbers"`
}

// History returns the limit newest draws, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+drawColumns+` FROM draws
		WHERE draw_id IN (SELECT DISTINCT draw_id FROM draws ORDER BY draw_id DESC LIMIT ?)
		ORDER BY draw_id DESC, id ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].ID == r.DrawID {
			if r.Modality == draw.Traditional {
				out[n-1].Modality = r.Modality
				out[n-1].Numbers = append([]int(nil), r.Numbers[:]...)
			}
			continue
		}
		out = append(out, HistoryEntry{
			ID:       r.DrawID,
			Date:     r.Date,
			Modality: r.Modality,
			Numbers:  append([]int(nil), r.Numbers[:]...),
		})
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM draws`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (draw.Record, error) {
	var r draw.Record
	var modality string
	if err := sc.Scan(&r.DrawID, &r.Date, &modality,
		&r.Numbers[0], &r.Numbers[1], &r.Numbers[2],
		&r.Numbers[3], &r.Numbers[4], &r.Numbers[5]); err != nil {
		return r, err
	}
	m, err := draw.ParseModality(modality)
	if err != nil {
		return r, err
	}
	r.Modality = m
	return r, nil
}
