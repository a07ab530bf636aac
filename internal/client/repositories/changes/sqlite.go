package changes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, kind, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_changes (kind, name) VALUES (?, ?)
		ON CONFLICT(kind, name) DO NOTHING
	`, kind, name)
	if err != nil {
		return fmt.Errorf("failed to record change %s/%s: %w", kind, name, err)
	}
	return nil
}

func (r *SQLiteRepository) Current(ctx context.Context) (*models.PendingChangeSet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, name FROM pending_changes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select changes: %w", err)
	}
	defer rows.Close()

	set := models.NewPendingChangeSet()
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		set.Add(kind, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate changes: %w", err)
	}
	return set, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_changes`); err != nil {
		return fmt.Errorf("failed to clear changes: %w", err)
	}
	return nil
}
