package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_professor_store.go -package=mocks rateprof-ai/internal/storage ProfessorStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ProfessorStore defines the interface for professor catalog operations.
type ProfessorStore interface {
	// Get gets a professor by namespace and name.
	// Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, namespace, name string) (*ProfessorRecord, error)
	// Upsert inserts a new professor or updates an existing one.
	Upsert(ctx context.Context, rec *ProfessorRecord) error
	// List returns every professor in a namespace ordered by name.
	List(ctx context.Context, namespace string) ([]ProfessorRecord, error)
	// Delete removes a professor. Deleting a missing professor is not an error.
	Delete(ctx context.Context, namespace, name string) error
	// Count returns the number of professors in a namespace.
	Count(ctx context.Context, namespace string) (int, error)
}

// ProfessorRepo provides methods for professor catalog operations.
// It implements the ProfessorStore interface.
type ProfessorRepo struct {
	db *sql.DB
}

// NewProfessorRepo creates a new ProfessorRepo.
func NewProfessorRepo(db *sql.DB) *ProfessorRepo {
	return &ProfessorRepo{db: db}
}

// Get gets a professor by namespace and name.
// Returns nil and ErrNotFound if not found.
func (r *ProfessorRepo) Get(ctx context.Context, namespace, name string) (*ProfessorRecord, error) {
	var rec ProfessorRecord
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT namespace, name, point_id, subject, stars, hash, updated_at FROM professors WHERE namespace = ? AND name = ?",
		namespace, name,
	).Scan(&rec.Namespace, &rec.Name, &rec.PointID, &rec.Subject, &rec.Stars, &rec.Hash, &updatedAtStr)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query professor: %w", err)
	}

	rec.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Upsert inserts a new professor or updates an existing one.
// The point ID is derived from namespace and name, so it is written as given.
func (r *ProfessorRepo) Upsert(ctx context.Context, rec *ProfessorRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO professors (namespace, name, point_id, subject, stars, hash, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (namespace, name) DO UPDATE SET
		 point_id = excluded.point_id, subject = excluded.subject, stars = excluded.stars,
		 hash = excluded.hash, updated_at = CURRENT_TIMESTAMP`,
		rec.Namespace, rec.Name, rec.PointID, rec.Subject, rec.Stars, rec.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert professor: %w", err)
	}

	return nil
}

// List returns every professor in a namespace ordered by name.
func (r *ProfessorRepo) List(ctx context.Context, namespace string) ([]ProfessorRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT namespace, name, point_id, subject, stars, hash, updated_at FROM professors WHERE namespace = ? ORDER BY name",
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list professors: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []ProfessorRecord
	for rows.Next() {
		var rec ProfessorRecord
		var updatedAtStr string
		if err := rows.Scan(&rec.Namespace, &rec.Name, &rec.PointID, &rec.Subject, &rec.Stars, &rec.Hash, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan professor: %w", err)
		}
		if rec.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate professors: %w", err)
	}

	return records, nil
}

// Delete removes a professor. Deleting a missing professor is not an error.
func (r *ProfessorRepo) Delete(ctx context.Context, namespace, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM professors WHERE namespace = ? AND name = ?", namespace, name); err != nil {
		return fmt.Errorf("failed to delete professor: %w", err)
	}
	return nil
}

// Count returns the number of professors in a namespace.
func (r *ProfessorRepo) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM professors WHERE namespace = ?", namespace).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count professors: %w", err)
	}
	return count, nil
}

// parseTimestamp parses a SQLite DATETIME column.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// Try alternative format (SQLite might use different format)
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}
