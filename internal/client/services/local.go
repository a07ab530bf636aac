package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/document"
)

// Keys of the client key/value store.
const (
	KeyLocalEntry  = "teamdb_local_entry"
	KeyCache       = "database_yaml"
	KeyAbsenceData = "absence_data"
	KeyServerURL   = "server_url"
	KeyEmail       = "teamdb_email"
	KeyToken       = "teamdb_token"
)

// ServerSettings locate and authenticate the directory server.
type ServerSettings struct {
	URL   string
	Email string
	Token string
}

type LocalStore interface {
	// LocalEntry returns nil when nothing was saved.
	LocalEntry(ctx context.Context) (*models.LocalEntry, error)
	// SaveLocal stores doc as the pending local entry stamped with now.
	SaveLocal(ctx context.Context, doc *document.Document) (*models.LocalEntry, error)
	// ClearLocal drops the local entry and the pending change set together.
	ClearLocal(ctx context.Context) error
	HasPending(ctx context.Context) (bool, error)

	// Cache returns the cached snapshot text, nil when absent.
	Cache(ctx context.Context) ([]byte, error)
	SaveCache(ctx context.Context, doc *document.Document) error
	ClearCache(ctx context.Context) error

	AbsenceData(ctx context.Context) ([]byte, error)
	SaveAbsenceData(ctx context.Context, raw []byte) error

	ServerSettings(ctx context.Context) (ServerSettings, error)
	// SaveServerSettings stores the non-empty fields of s.
	SaveServerSettings(ctx context.Context, s ServerSettings) error
}

type localStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewLocalStore(db *sql.DB, now func() time.Time) LocalStore {
	if now == nil {
		now = time.Now
	}
	return &localStore{db: db, now: now}
}

func (s *localStore) kv() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *localStore) LocalEntry(ctx context.Context) (*models.LocalEntry, error) {
	raw, err := s.kv().Get(ctx, KeyLocalEntry)
	if err != nil || raw == nil {
		return nil, err
	}
	var e models.LocalEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode local entry: %w", err)
	}
	return &e, nil
}

func (s *localStore) SaveLocal(ctx context.Context, doc *document.Document) (*models.LocalEntry, error) {
	e := &models.LocalEntry{
		Data:       doc,
		ModifiedAt: models.FormatModifiedAt(s.now()),
		Pending:    true,
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode local entry: %w", err)
	}
	if err := s.kv().Set(ctx, KeyLocalEntry, raw); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *localStore) ClearLocal(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		if err := repos.Metadata.Delete(ctx, KeyLocalEntry); err != nil {
			return err
		}
		return repos.Changes.Clear(ctx)
	})
}

func (s *localStore) HasPending(ctx context.Context) (bool, error) {
	e, err := s.LocalEntry(ctx)
	if err != nil {
		return false, err
	}
	return e != nil && e.Pending, nil
}

func (s *localStore) Cache(ctx context.Context) ([]byte, error) {
	return s.kv().Get(ctx, KeyCache)
}

func (s *localStore) SaveCache(ctx context.Context, doc *document.Document) error {
	y, err := doc.YAML()
	if err != nil {
		return err
	}
	return s.kv().Set(ctx, KeyCache, y)
}

func (s *localStore) ClearCache(ctx context.Context) error {
	return s.kv().Delete(ctx, KeyCache)
}

func (s *localStore) AbsenceData(ctx context.Context) ([]byte, error) {
	return s.kv().Get(ctx, KeyAbsenceData)
}

func (s *localStore) SaveAbsenceData(ctx context.Context, raw []byte) error {
	return s.kv().Set(ctx, KeyAbsenceData, raw)
}

func (s *localStore) ServerSettings(ctx context.Context) (ServerSettings, error) {
	m, err := s.kv().GetMultiple(ctx, KeyServerURL, KeyEmail, KeyToken)
	if err != nil {
		return ServerSettings{}, err
	}
	return ServerSettings{
		URL:   strings.TrimSpace(string(m[KeyServerURL])),
		Email: string(m[KeyEmail]),
		Token: string(m[KeyToken]),
	}, nil
}

func (s *localStore) SaveServerSettings(ctx context.Context, set ServerSettings) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		kv := metadata.NewSQLiteRepository(tx)
		for k, v := range map[string]string{KeyServerURL: set.URL, KeyEmail: set.Email, KeyToken: set.Token} {
			if v == "" {
				continue
			}
			if err := kv.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}
