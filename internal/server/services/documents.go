// Package services contains server-side business logic. This file implements
// DocumentService, which stores the shared directory snapshot, enforces the
// modified-since precondition and keeps a rotating set of backups.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/document"
	"github.com/dmitrijs2005/teamdb/internal/logging"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/repomanager"
)

// Mirror copies a replaced snapshot somewhere outside the database.
type Mirror interface {
	Put(ctx context.Context, id string, createdAt time.Time, body []byte) (string, error)
}

// Current is the stored snapshot as served to clients.
type Current struct {
	Document     *document.Document
	LastModified time.Time
	ModifiedBy   string
}

// PutResult describes a successful save.
type PutResult struct {
	Version    string
	ModifiedAt time.Time
	// BackupID is empty when there was no previous document.
	BackupID string
	Pruned   int64
}

type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	maxBackups  int
	mirror      Mirror
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

// NewDocumentService constructs a DocumentService. mirror may be nil.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, maxBackups int, mirror Mirror, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		maxBackups:  maxBackups,
		mirror:      mirror,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Get returns the current snapshot or common.ErrorNotFound.
func (s *DocumentService) Get(ctx context.Context) (*Current, error) {
	stored, err := s.repomanager.Documents(s.db).Current(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(stored.Body)
	if err != nil {
		return nil, fmt.Errorf("stored document is unreadable: %w", err)
	}
	return &Current{Document: doc, LastModified: stored.ModifiedAt.UTC(), ModifiedBy: stored.ModifiedBy}, nil
}

// Put validates raw (JSON or YAML) and replaces the stored snapshot.
//
// When since is set and the stored document was modified after it (compared
// at second precision) the save is refused with common.ErrVersionConflict.
// The replaced document is kept as a backup; only the newest maxBackups are
// retained.
func (s *DocumentService) Put(ctx context.Context, raw []byte, since *time.Time, email string) (*PutResult, error) {
	if err := document.Validate(raw); err != nil {
		return nil, err
	}
	doc, err := document.Parse(raw)
	if err != nil {
		return nil, err
	}
	body, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	next := &models.StoredDocument{
		Version:    string(doc.Version),
		Body:       body,
		ModifiedAt: now,
		ModifiedBy: email,
	}

	res := &PutResult{Version: next.Version, ModifiedAt: now}

	// previous is the replaced document, nil on the first save
	previous, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.StoredDocument, error) {
		repo := s.repomanager.Documents(tx)

		cur, err := repo.CurrentForUpdate(ctx)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			cur = nil
		case err != nil:
			return nil, fmt.Errorf("error reading current document: %w", err)
		}

		if cur != nil && since != nil && modifiedAfter(cur.ModifiedAt, *since) {
			return nil, common.ErrVersionConflict
		}

		if cur != nil {
			res.BackupID = s.newID()
			if err := repo.AddBackup(ctx, res.BackupID, cur); err != nil {
				return nil, fmt.Errorf("error creating backup: %w", err)
			}
		}

		if err := repo.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("error saving document: %w", err)
		}

		if cur != nil {
			n, err := repo.PruneBackups(ctx, s.maxBackups)
			if err != nil {
				return nil, fmt.Errorf("error pruning backups: %w", err)
			}
			res.Pruned = n
		}
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "document saved", "version", res.Version, "by", email, "backup", res.BackupID, "pruned", res.Pruned)

	if previous != nil && s.mirror != nil {
		key, err := s.mirror.Put(ctx, res.BackupID, now, previous.Body)
		if err != nil {
			s.logger.Error(ctx, "backup mirror failed", "backup", res.BackupID, "error", err)
		} else {
			s.logger.Debug(ctx, "backup mirrored", "key", key)
		}
	}

	return res, nil
}

// ListBackups returns the retained backups, newest first.
func (s *DocumentService) ListBackups(ctx context.Context) ([]models.Backup, error) {
	return s.repomanager.Documents(s.db).ListBackups(ctx)
}

func modifiedAfter(stored, since time.Time) bool {
	return stored.UTC().Truncate(time.Second).After(since.UTC().Truncate(time.Second))
}
