// Package store is the SQLite persistence layer for draw records.
//
// Records are keyed by (draw_id, modality); saving an existing key is a
// no-op. The database is initialised explicitly by Open, once, by the
// composition root, and the handle is passed to whoever needs it.
package store

import (
	"database/sql"

	"github.com/hazyhaar/quinimind/dbopen"
)

// Store is the draw database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// NewStore wraps an already-opened database. The schema must have been
// applied (see Schema).
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
