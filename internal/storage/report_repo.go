package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"linview/internal/models"
)

type ReportRepo struct {
	db *DB
}

func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// InsertReport stores rep and returns it with its id and timestamp filled.
func (r *ReportRepo) InsertReport(ctx context.Context, rep models.LoadReport) (models.LoadReport, error) {
	if err := r.db.EnsureSchema(ctx); err != nil {
		return models.LoadReport{}, err
	}
	if rep.ReportID == "" {
		rep.ReportID = uuid.NewString()
	}
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO load_reports (report_id, document, base_name, variant, attempt, partial_fetch, first_page_seconds, full_load_seconds, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''))
RETURNING created_at`,
		rep.ReportID, rep.Document, rep.BaseName, rep.Variant, rep.Attempt, rep.PartialFetch, rep.FirstPageSeconds, rep.FullLoadSeconds, rep.Error,
	).Scan(&rep.CreatedAt)
	if err != nil {
		return models.LoadReport{}, fmt.Errorf("insert report: %w", err)
	}
	return rep, nil
}

// ListReports returns the newest reports first, optionally for one base name.
func (r *ReportRepo) ListReports(ctx context.Context, baseName string, limit int) ([]models.LoadReport, error) {
	if err := r.db.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT report_id::text, document, base_name, variant, attempt, partial_fetch,
       first_page_seconds, full_load_seconds, COALESCE(error,''), created_at
FROM load_reports
WHERE ($1 = '' OR base_name = $1)
ORDER BY created_at DESC
LIMIT $2`, baseName, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]models.LoadReport, 0)
	for rows.Next() {
		var rep models.LoadReport
		if err := rows.Scan(&rep.ReportID, &rep.Document, &rep.BaseName, &rep.Variant, &rep.Attempt, &rep.PartialFetch,
			&rep.FirstPageSeconds, &rep.FullLoadSeconds, &rep.Error, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}
