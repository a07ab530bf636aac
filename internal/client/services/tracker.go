package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/client/repositories/changes"
)

// Tracker records which entities were edited locally since the last
// successful sync.
type Tracker interface {
	RecordChange(ctx context.Context, kind, name string) error
	CurrentChanges(ctx context.Context) (*models.PendingChangeSet, error)
	Clear(ctx context.Context) error
}

type tracker struct {
	db *sql.DB
}

func NewTracker(db *sql.DB) Tracker {
	return &tracker{db: db}
}

func (t *tracker) repo() changes.Repository {
	return changes.NewSQLiteRepository(t.db)
}

func (t *tracker) RecordChange(ctx context.Context, kind, name string) error {
	return t.repo().Record(ctx, kind, name)
}

func (t *tracker) CurrentChanges(ctx context.Context) (*models.PendingChangeSet, error) {
	return t.repo().Current(ctx)
}

func (t *tracker) Clear(ctx context.Context) error {
	return t.repo().Clear(ctx)
}
