package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/teamdb/internal/client/migrations"
	"github.com/dmitrijs2005/teamdb/internal/client/repositories/changes"
	"github.com/dmitrijs2005/teamdb/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
)

// Repositories bundles the local cache repositories.
type Repositories struct {
	Metadata metadata.Repository
	Changes  changes.Repository
}

func NewRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Changes:  changes.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the sqlite cache at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", dsn, err)
	}
	return db, nil
}
