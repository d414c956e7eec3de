package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

// InspectorStore is the durable inspector roster. It enforces only what the
// schema does; name validation belongs to callers.
type InspectorStore struct {
	db *sql.DB
}

func NewInspectorStore(db *sql.DB) *InspectorStore {
	return &InspectorStore{db: db}
}

// Add inserts an inspector and returns its id.
func (s *InspectorStore) Add(ctx context.Context, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO inspectors (name) VALUES (?)
	`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to add inspector: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// List returns every inspector, newest first. It never returns nil on
// success.
func (s *InspectorStore) List(ctx context.Context) ([]*domain.Inspector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, createdAt FROM inspectors ORDER BY createdAt DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspectors: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	inspectors := make([]*domain.Inspector, 0)
	for rows.Next() {
		inspector := &domain.Inspector{}
		if err := rows.Scan(&inspector.ID, &inspector.Name, &inspector.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inspector: %w", err)
		}
		inspectors = append(inspectors, inspector)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inspectors: %w", err)
	}

	return inspectors, nil
}

// Remove deletes the inspector with id. Removing an unknown id is not an
// error.
func (s *InspectorStore) Remove(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM inspectors WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to remove inspector: %w", err)
	}

	return nil
}
