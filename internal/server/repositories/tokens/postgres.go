// Package tokens provides a PostgreSQL-backed repository for the hashes of
// issued access tokens.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/cryptox"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, email string, h cryptox.TokenHash) error {
	query := `
		INSERT INTO tokens (email, salt, hash, iterations)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			salt = EXCLUDED.salt,
			hash = EXCLUDED.hash,
			iterations = EXCLUDED.iterations,
			created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, email, h.Salt, h.Hash, h.Iterations); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, email string) (*models.Token, error) {
	query := `
		SELECT email, salt, hash, iterations, created_at
		FROM tokens
		WHERE email = $1
	`
	t := &models.Token{}
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&t.Email, &t.Hash.Salt, &t.Hash.Hash, &t.Hash.Iterations, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
