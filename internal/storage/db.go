package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool

	schemaMu       sync.Mutex
	schemaPrepared bool
}

func NewDB(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS pdf_files (
  name TEXT PRIMARY KEY,
  base_name TEXT NOT NULL,
  variant TEXT NOT NULL CHECK (variant IN ('original','linearized')),
  size_bytes BIGINT NOT NULL DEFAULT 0,
  page_count INT NOT NULL DEFAULT 0,
  linearized BOOLEAN NOT NULL DEFAULT FALSE,
  sha256 TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_pdf_files_base ON pdf_files(base_name);

CREATE TABLE IF NOT EXISTS load_reports (
  report_id UUID PRIMARY KEY,
  document TEXT NOT NULL,
  base_name TEXT NOT NULL,
  variant TEXT NOT NULL,
  attempt INT NOT NULL DEFAULT 1,
  partial_fetch BOOLEAN NOT NULL DEFAULT FALSE,
  first_page_seconds DOUBLE PRECISION,
  full_load_seconds DOUBLE PRECISION,
  error TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_load_reports_base ON load_reports(base_name, created_at DESC);
`

// EnsureSchema creates the tables on first use so a fresh database works
// without a separate migration step.
func (d *DB) EnsureSchema(ctx context.Context) error {
	d.schemaMu.Lock()
	defer d.schemaMu.Unlock()
	if d.schemaPrepared {
		return nil
	}
	if _, err := d.Pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	d.schemaPrepared = true
	return nil
}
