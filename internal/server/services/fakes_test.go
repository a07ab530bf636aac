package services

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/teamdb/internal/cryptox"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/logging"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/documents"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/tokens"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func nopLogger() logging.Logger { return logging.NewTextLogger(io.Discard, "error") }

type fakeDocsRepo struct {
	current    *models.StoredDocument
	currentErr error

	saveErr   error
	backupErr error
	pruneOut  int64
	pruneErr  error
	listOut   []models.Backup

	saved    *models.StoredDocument
	backupID string
	backedUp *models.StoredDocument
	pruneArg int
	pruned   bool
}

func (f *fakeDocsRepo) Current(context.Context) (*models.StoredDocument, error) {
	return f.current, f.currentErr
}

func (f *fakeDocsRepo) CurrentForUpdate(context.Context) (*models.StoredDocument, error) {
	return f.current, f.currentErr
}

func (f *fakeDocsRepo) Save(_ context.Context, doc *models.StoredDocument) error {
	f.saved = doc
	return f.saveErr
}

func (f *fakeDocsRepo) AddBackup(_ context.Context, id string, doc *models.StoredDocument) error {
	f.backupID, f.backedUp = id, doc
	return f.backupErr
}

func (f *fakeDocsRepo) PruneBackups(_ context.Context, keep int) (int64, error) {
	f.pruned, f.pruneArg = true, keep
	return f.pruneOut, f.pruneErr
}

func (f *fakeDocsRepo) ListBackups(context.Context) ([]models.Backup, error) {
	return f.listOut, nil
}

type fakeTokensRepo struct {
	stored   map[string]cryptox.TokenHash
	findErr  error
	upsertEr error
}

func (f *fakeTokensRepo) Upsert(_ context.Context, email string, h cryptox.TokenHash) error {
	if f.upsertEr != nil {
		return f.upsertEr
	}
	if f.stored == nil {
		f.stored = map[string]cryptox.TokenHash{}
	}
	f.stored[email] = h
	return nil
}

func (f *fakeTokensRepo) Find(_ context.Context, email string) (*models.Token, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	h, ok := f.stored[email]
	if !ok {
		return nil, errNotFound
	}
	return &models.Token{Email: email, Hash: h, CreatedAt: time.Now()}, nil
}

type fakeRepoManager struct {
	docs   *fakeDocsRepo
	tokens *fakeTokensRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository       { return m.docs }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository             { return m.tokens }

type fakeMirror struct {
	id   string
	at   time.Time
	body []byte
	err  error
}

func (f *fakeMirror) Put(_ context.Context, id string, at time.Time, body []byte) (string, error) {
	f.id, f.at, f.body = id, at, body
	if f.err != nil {
		return "", f.err
	}
	return "backups/" + id + ".json", nil
}
