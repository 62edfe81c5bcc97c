package store

// Schema creates the draw and run-log tables.
const Schema = `
-- One row per (draw, modality)
CREATE TABLE IF NOT EXISTS draws (
    id          INTEGER PRIMARY KEY,
    draw_id     INTEGER NOT NULL CHECK (draw_id > 0),
    draw_date   TEXT NOT NULL,
    modality    TEXT NOT NULL,
    n1          INTEGER NOT NULL CHECK (n1 BETWEEN 0 AND 45),
    n2          INTEGER NOT NULL CHECK (n2 BETWEEN 0 AND 45),
    n3          INTEGER NOT NULL CHECK (n3 BETWEEN 0 AND 45),
    n4          INTEGER NOT NULL CHECK (n4 BETWEEN 0 AND 45),
    n5          INTEGER NOT NULL CHECK (n5 BETWEEN 0 AND 45),
    n6          INTEGER NOT NULL CHECK (n6 BETWEEN 0 AND 45),
    created_at  INTEGER NOT NULL,
    UNIQUE (draw_id, modality)
);
CREATE INDEX IF NOT EXISTS idx_draws_modality ON draws(modality, draw_id DESC);

-- Refresh run log (observability)
CREATE TABLE IF NOT EXISTS fetch_runs (
    id             TEXT PRIMARY KEY,
    status         TEXT NOT NULL,
    links          INTEGER NOT NULL DEFAULT 0,
    pages          INTEGER NOT NULL DEFAULT 0,
    parsed         INTEGER NOT NULL DEFAULT 0,
    saved          INTEGER NOT NULL DEFAULT 0,
    duplicates     INTEGER NOT NULL DEFAULT 0,
    failed         INTEGER NOT NULL DEFAULT 0,
    skipped        INTEGER NOT NULL DEFAULT 0,
    snapshot_draw  INTEGER,
    error_message  TEXT NOT NULL DEFAULT '',
    started_at     INTEGER NOT NULL,
    finished_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_runs_time ON fetch_runs(started_at DESC);
`
