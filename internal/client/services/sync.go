package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/client/client"
	"github.com/dmitrijs2005/teamdb/internal/client/models"
	"github.com/dmitrijs2005/teamdb/internal/document"
)

// Remote is the directory server as seen by the client.
// *client.HTTPClient implements it.
type Remote interface {
	Fetch(ctx context.Context) (*document.Document, error)
	Push(ctx context.Context, entry *models.LocalEntry, force bool) (*client.PushResult, error)
	Ping(ctx context.Context) error
}

type SyncService interface {
	// Push uploads entry to remote. On success the local entry and the
	// pending change set are cleared; on any error both are left alone.
	Push(ctx context.Context, remote Remote, entry *models.LocalEntry, force bool) (*client.PushResult, error)
}

type syncService struct {
	local LocalStore
}

func NewSyncService(local LocalStore) SyncService {
	return &syncService{local: local}
}

func (s *syncService) Push(ctx context.Context, remote Remote, entry *models.LocalEntry, force bool) (*client.PushResult, error) {
	res, err := remote.Push(ctx, entry, force)
	if err != nil {
		return nil, err
	}
	if err := s.local.ClearLocal(ctx); err != nil {
		return res, fmt.Errorf("pushed, but failed to clear pending state: %w", err)
	}
	return res, nil
}
