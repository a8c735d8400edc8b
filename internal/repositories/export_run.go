package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/kino/internal/models"
	"github.com/desertthunder/kino/internal/shared"
)

// ExportRunRepository stores the history of list exports.
type ExportRunRepository struct {
	db *sql.DB
}

// NewExportRunRepository creates a new [ExportRunRepository] with the given database connection
func NewExportRunRepository(db *sql.DB) *ExportRunRepository {
	return &ExportRunRepository{db: db}
}

// Create inserts run, assigning an ID and creation time when unset.
func (r *ExportRunRepository) Create(run *models.ExportRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Format == "" {
		return fmt.Errorf("%w: export run has no format", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO export_runs (id, format, output_dir, total_lists, succeeded, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, run.ID, run.Format, run.OutputDir, run.TotalLists, run.Succeeded, run.Failed, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}
	return nil
}

// Get returns a run by ID.
func (r *ExportRunRepository) Get(id string) (*models.ExportRun, error) {
	query := `
		SELECT id, format, output_dir, total_lists, succeeded, failed, created_at
		FROM export_runs WHERE id = ?
	`
	run, err := scanExportRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: export run %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query export run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (r *ExportRunRepository) Recent(limit int) ([]*models.ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, format, output_dir, total_lists, succeeded, failed, created_at
		FROM export_runs ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ExportRun
	for rows.Next() {
		run, err := scanExportRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExportRun(row rowScanner) (*models.ExportRun, error) {
	var run models.ExportRun
	err := row.Scan(&run.ID, &run.Format, &run.OutputDir, &run.TotalLists, &run.Succeeded, &run.Failed, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
