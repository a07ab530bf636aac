package services

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/document"
	"github.com/dmitrijs2005/teamdb/internal/logging"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "teamdb.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, "error")
}

func sampleDoc(version document.Version, names ...string) *document.Document {
	doc := &document.Document{
		Version: version,
		Database: document.Database{
			People:   []document.PersonRecord{},
			Teams:    []document.TeamRecord{{Name: "Core", ShortName: "COR"}},
			Projects: []document.ProjectRecord{{Name: "Apollo", ProjectLead: "Alice"}},
		},
	}
	for i, n := range names {
		doc.Database.People = append(doc.Database.People, document.PersonRecord{
			UserID:      "u" + string(rune('1'+i)),
			Name:        n,
			TeamName:    "Core",
			VirtualTeam: []string{},
			Site:        "LY",
		})
	}
	return doc
}

func yamlOf(t *testing.T, doc *document.Document) []byte {
	t.Helper()
	y, err := doc.YAML()
	require.NoError(t, err)
	return y
}

// fakeRemote is a Remote with preset outputs and captured inputs.
type fakeRemote struct {
	mu sync.Mutex

	fetchDoc *document.Document
	fetchErr error
	// fetchGate, when set, blocks Fetch until closed
	fetchGate  chan struct{}
	fetchCalls int

	pushRes    *client.PushResult
	pushErr    error
	pushed     []*models.LocalEntry
	pushForced []bool

	pingErr   error
	pingCalls int
}

func (f *fakeRemote) Fetch(ctx context.Context) (*document.Document, error) {
	f.mu.Lock()
	f.fetchCalls++
	gate := f.fetchGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.fetchDoc, f.fetchErr
}

func (f *fakeRemote) Push(ctx context.Context, entry *models.LocalEntry, force bool) (*client.PushResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, entry)
	f.pushForced = append(f.pushForced, force)
	return f.pushRes, f.pushErr
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}
