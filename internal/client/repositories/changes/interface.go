// Package changes persists the pending change set of the client: the names
// of people, teams and projects edited since the last successful sync.
package changes

import (
	"context"

	"github.com/dmitrijs2005/teamdb/internal/client/models"
)

type Repository interface {
	// Record adds name under kind. Recording the same pair twice is a no-op.
	Record(ctx context.Context, kind, name string) error

	// Current returns the set in recording order; empty lists when nothing
	// was recorded.
	Current(ctx context.Context) (*models.PendingChangeSet, error)

	Clear(ctx context.Context) error
}
