// Package documents provides a PostgreSQL-backed repository for the current
// directory snapshot and its backups.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
)

// PostgresRepository works over dbx.DBTX (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) current(ctx context.Context, query string) (*models.StoredDocument, error) {
	doc := &models.StoredDocument{}
	if err := r.db.QueryRowContext(ctx, query).Scan(&doc.Version, &doc.Body, &doc.ModifiedAt, &doc.ModifiedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) Current(ctx context.Context) (*models.StoredDocument, error) {
	return r.current(ctx, `
		SELECT version, body, modified_at, modified_by
		FROM documents
		WHERE id = 1
	`)
}

func (r *PostgresRepository) CurrentForUpdate(ctx context.Context) (*models.StoredDocument, error) {
	return r.current(ctx, `
		SELECT version, body, modified_at, modified_by
		FROM documents
		WHERE id = 1
		FOR UPDATE
	`)
}

// Save replaces the stored snapshot.
func (r *PostgresRepository) Save(ctx context.Context, doc *models.StoredDocument) error {
	query := `
		INSERT INTO documents (id, version, body, modified_at, modified_by)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			version = EXCLUDED.version,
			body = EXCLUDED.body,
			modified_at = EXCLUDED.modified_at,
			modified_by = EXCLUDED.modified_by
	`
	if _, err := r.db.ExecContext(ctx, query, doc.Version, string(doc.Body), doc.ModifiedAt, doc.ModifiedBy); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddBackup(ctx context.Context, id string, doc *models.StoredDocument) error {
	query := `
		INSERT INTO document_backups (id, version, body, modified_at, modified_by)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, id, doc.Version, string(doc.Body), doc.ModifiedAt, doc.ModifiedBy); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PruneBackups(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM document_backups
		WHERE id IN (
			SELECT id FROM document_backups
			ORDER BY created_at DESC
			OFFSET $1
		)
	`
	res, err := r.db.ExecContext(ctx, query, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListBackups returns backup metadata, newest first. Bodies are not loaded.
func (r *PostgresRepository) ListBackups(ctx context.Context) ([]models.Backup, error) {
	query := `
		SELECT id, version, modified_at, modified_by, created_at
		FROM document_backups
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Backup{}
	for rows.Next() {
		var b models.Backup
		if err := rows.Scan(&b.ID, &b.Version, &b.ModifiedAt, &b.ModifiedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
