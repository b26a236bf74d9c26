package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"linview/internal/models"
	"linview/internal/util"
)

type FileRepo struct {
	db *DB
}

func NewFileRepo(db *DB) *FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) UpsertFile(ctx context.Context, f models.FileRecord) error {
	if err := r.db.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO pdf_files (name, base_name, variant, size_bytes, page_count, linearized, sha256)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))
ON CONFLICT (name)
DO UPDATE SET
  base_name = EXCLUDED.base_name,
  variant = EXCLUDED.variant,
  size_bytes = EXCLUDED.size_bytes,
  page_count = EXCLUDED.page_count,
  linearized = EXCLUDED.linearized,
  sha256 = COALESCE(EXCLUDED.sha256, pdf_files.sha256),
  updated_at = NOW()`,
		f.Name, f.BaseName, f.Variant, f.SizeBytes, f.PageCount, f.Linearized, f.SHA256,
	)
	if err != nil {
		return fmt.Errorf("upsert file: %w", err)
	}
	return nil
}

func (r *FileRepo) GetFile(ctx context.Context, name string) (models.FileRecord, error) {
	if err := r.db.EnsureSchema(ctx); err != nil {
		return models.FileRecord{}, err
	}
	var f models.FileRecord
	err := r.db.Pool.QueryRow(ctx, `
SELECT name, base_name, variant, size_bytes, page_count, linearized, COALESCE(sha256,''), created_at
FROM pdf_files WHERE name=$1`, name).
		Scan(&f.Name, &f.BaseName, &f.Variant, &f.SizeBytes, &f.PageCount, &f.Linearized, &f.SHA256, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.FileRecord{}, util.ErrFileNotFound
	}
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("get file: %w", err)
	}
	return f, nil
}

func (r *FileRepo) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	if err := r.db.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT name, base_name, variant, size_bytes, page_count, linearized, COALESCE(sha256,''), created_at
FROM pdf_files
ORDER BY base_name, variant`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := make([]models.FileRecord, 0)
	for rows.Next() {
		var f models.FileRecord
		if err := rows.Scan(&f.Name, &f.BaseName, &f.Variant, &f.SizeBytes, &f.PageCount, &f.Linearized, &f.SHA256, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return out, nil
}
