package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/config"
	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/directory"
	"github.com/dmitrijs2005/teamdb/internal/logging"
)

// Push outcome reasons.
const (
	ReasonNoPending = "no_pending"
	ReasonNoServer  = "no_server"
	ReasonConflict  = "conflict"
	ReasonSaveError = "save_error"
)

// PushOutcome is the result of SavePending. Reason is empty when OK.
type PushOutcome struct {
	OK     bool
	Reason string
	Result *client.PushResult
	Err    error
}

// RemoteFactory builds the server client for the given settings.
type RemoteFactory func(ServerSettings) Remote

// Session is the client's explicit context object: it owns the config, the
// local cache services and the live directory, which is initialized once
// and shared by every caller.
type Session struct {
	cfg     *config.Config
	local   LocalStore
	tracker Tracker
	sync    SyncService
	logger  logging.Logger
	now     func() time.Time

	newRemote RemoteFactory
	readFile  func(string) ([]byte, error)

	init singleflight.Group

	mu          sync.Mutex
	store       *directory.Store
	source      models.Source
	unsubscribe func()

	online atomic.Bool
}

type SessionOption func(*Session)

func WithRemoteFactory(f RemoteFactory) SessionOption {
	return func(s *Session) { s.newRemote = f }
}

func WithSnapshotReader(fn func(string) ([]byte, error)) SessionOption {
	return func(s *Session) { s.readFile = fn }
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func NewSession(cfg *config.Config, db *sql.DB, logger logging.Logger, opts ...SessionOption) *Session {
	s := &Session{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		readFile: os.ReadFile,
	}
	for _, o := range opts {
		o(s)
	}
	if s.newRemote == nil {
		s.newRemote = func(set ServerSettings) Remote {
			return client.NewHTTPClient(set.URL, client.Credentials{Email: set.Email, Token: set.Token}, cfg.RequestTimeout)
		}
	}
	s.local = NewLocalStore(db, s.now)
	s.tracker = NewTracker(db)
	s.sync = NewSyncService(s.local)
	return s
}

// SeedSettings stores the server settings given in the config so that they
// survive restarts without flags.
func (s *Session) SeedSettings(ctx context.Context) error {
	return s.local.SaveServerSettings(ctx, ServerSettings{URL: s.cfg.ServerURL, Email: s.cfg.Email, Token: s.cfg.Token})
}

func (s *Session) Settings(ctx context.Context) (ServerSettings, error) {
	return s.local.ServerSettings(ctx)
}

func (s *Session) SaveSettings(ctx context.Context, set ServerSettings) error {
	return s.local.SaveServerSettings(ctx, set)
}

// remote returns nil when no server URL is configured.
func (s *Session) remote(ctx context.Context) (Remote, error) {
	set, err := s.local.ServerSettings(ctx)
	if err != nil {
		return nil, err
	}
	if set.URL == "" {
		return nil, nil
	}
	return s.newRemote(set), nil
}

// Directory returns the live store, initializing it on first use.
// Concurrent callers share one initialization; a failed one is retried by
// the next call.
func (s *Session) Directory(ctx context.Context) (*directory.Store, error) {
	if st := s.current(); st != nil {
		return st, nil
	}

	v, err, _ := s.init.Do("directory", func() (any, error) {
		return s.initOnce(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*directory.Store), nil
}

func (s *Session) current() *directory.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// initOnce runs inside the singleflight. A caller that checked the store
// just before an earlier flight finished gets that flight's store.
func (s *Session) initOnce(ctx context.Context) (*directory.Store, error) {
	if st := s.current(); st != nil {
		return st, nil
	}
	return s.initialize(ctx)
}

func (s *Session) initialize(ctx context.Context) (*directory.Store, error) {
	remote, err := s.remote(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read server settings: %w", err)
	}

	sel, err := NewReconciler(s.local, remote, s.cfg.SnapshotFile, s.logger, WithFileReader(s.readFile)).Reconcile(ctx)
	if err != nil {
		return nil, err
	}

	store := directory.NewStore(directory.WithClock(s.now))
	if err := store.Load(sel.Document); err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", sel.Source, err)
	}

	absence, err := s.local.AbsenceData(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to read absence data", "error", err)
	} else if absence != nil {
		if err := store.ImportAbsence(absence); err != nil {
			s.logger.Warn(ctx, "stored absence data ignored", "error", err)
		}
	}

	unsubscribe := store.Subscribe(s.onChange(store))

	s.mu.Lock()
	s.store = store
	s.source = sel.Source
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	s.logger.Info(ctx, "directory ready", "source", sel.Source, "people", len(store.AllPeople("")))
	return store, nil
}

// onChange persists every committed mutation: the exported snapshot becomes
// the pending local entry and the cache, and the entity is marked dirty.
func (s *Session) onChange(store *directory.Store) directory.Observer {
	return func(e directory.Event) {
		ctx := context.Background()
		doc := store.Export("")

		if _, err := s.local.SaveLocal(ctx, doc); err != nil {
			s.logger.Error(ctx, "failed to save local pending entry", "error", err)
		}
		if err := s.local.SaveCache(ctx, doc); err != nil {
			s.logger.Error(ctx, "failed to save cache", "error", err)
		}
		if err := s.tracker.RecordChange(ctx, string(e.Kind), e.ID); err != nil {
			s.logger.Error(ctx, "failed to record change", "kind", e.Kind, "id", e.ID, "error", err)
		}
		s.logger.Debug(ctx, "change recorded", "kind", e.Kind, "id", e.ID, "op", e.Op)
	}
}

// Source reports where the live directory was loaded from.
func (s *Session) Source() models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Session) reset() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.store, s.source, s.unsubscribe = nil, models.SourceNone, nil
	s.mu.Unlock()
	s.init.Forget("directory")
}

// Reload drops the live directory and initializes it again.
func (s *Session) Reload(ctx context.Context) (*directory.Store, error) {
	s.reset()
	return s.Directory(ctx)
}

// ClearCache drops the cached snapshot. The next Directory call
// reconciles from scratch.
func (s *Session) ClearCache(ctx context.Context) error {
	if err := s.local.ClearCache(ctx); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Session) HasPending(ctx context.Context) (bool, error) {
	return s.local.HasPending(ctx)
}

func (s *Session) PendingChanges(ctx context.Context) (*models.PendingChangeSet, error) {
	return s.tracker.CurrentChanges(ctx)
}

// DiscardPending drops the local entry and change set without pushing.
func (s *Session) DiscardPending(ctx context.Context) error {
	return s.local.ClearLocal(ctx)
}

// SavePending pushes the pending local entry to the server.
func (s *Session) SavePending(ctx context.Context, force bool) PushOutcome {
	entry, err := s.local.LocalEntry(ctx)
	if err != nil {
		return PushOutcome{Reason: ReasonSaveError, Err: err}
	}
	if entry == nil || !entry.Pending {
		return PushOutcome{Reason: ReasonNoPending}
	}

	remote, err := s.remote(ctx)
	if err != nil {
		return PushOutcome{Reason: ReasonSaveError, Err: err}
	}
	if remote == nil {
		return PushOutcome{Reason: ReasonNoServer, Err: client.ErrNoServer}
	}

	res, err := s.sync.Push(ctx, remote, entry, force)
	switch {
	case errors.Is(err, client.ErrConflict):
		return PushOutcome{Reason: ReasonConflict, Err: err}
	case err != nil && res == nil:
		return PushOutcome{Reason: ReasonSaveError, Err: err}
	case err != nil:
		s.logger.Warn(ctx, "push accepted but pending state kept", "error", err)
	}
	s.logger.Info(ctx, "pending changes pushed", "force", force)
	return PushOutcome{OK: true, Result: res}
}

// ImportAbsence merges an absence feed into the live directory and keeps
// it for the next start.
func (s *Session) ImportAbsence(ctx context.Context, raw []byte) error {
	store, err := s.Directory(ctx)
	if err != nil {
		return err
	}
	if err := store.ImportAbsence(raw); err != nil {
		return err
	}
	return s.local.SaveAbsenceData(ctx, raw)
}

// Online reports the result of the last status check.
func (s *Session) Online() bool {
	return s.online.Load()
}

// CheckStatus pings the server once and returns the new online state.
func (s *Session) CheckStatus(ctx context.Context) bool {
	remote, err := s.remote(ctx)
	up := err == nil && remote != nil && remote.Ping(ctx) == nil
	if s.online.Swap(up) != up {
		s.logger.Info(ctx, "server status changed", "online", up)
	}
	return up
}

// StartStatusWatcher checks the server every interval until ctx is done.
func (s *Session) StartStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			s.CheckStatus(pctx)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
