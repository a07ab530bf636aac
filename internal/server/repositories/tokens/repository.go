package tokens

import (
	"context"

	"github.com/dmitrijs2005/teamdb/internal/cryptox"
	"github.com/dmitrijs2005/teamdb/internal/server/models"
)

type Repository interface {
	// Upsert stores the hash for email, replacing any previous token.
	Upsert(ctx context.Context, email string, h cryptox.TokenHash) error
	// Find returns the token row for email or common.ErrorNotFound.
	Find(ctx context.Context, email string) (*models.Token, error)
}
