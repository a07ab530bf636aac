package documents

import (
	"context"

	"github.com/dmitrijs2005/teamdb/internal/server/models"
)

type Repository interface {
	// Current returns the stored snapshot or common.ErrorNotFound.
	Current(ctx context.Context) (*models.StoredDocument, error)
	// CurrentForUpdate is Current with a row lock held until the
	// surrounding transaction ends.
	CurrentForUpdate(ctx context.Context) (*models.StoredDocument, error)
	Save(ctx context.Context, doc *models.StoredDocument) error
	AddBackup(ctx context.Context, id string, doc *models.StoredDocument) error
	// PruneBackups keeps the newest keep backups and reports how many
	// were deleted.
	PruneBackups(ctx context.Context, keep int) (int64, error)
	ListBackups(ctx context.Context) ([]models.Backup, error)
}
