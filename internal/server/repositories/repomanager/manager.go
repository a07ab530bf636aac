package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamdb/internal/dbx"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/documents"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/tokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Documents(db dbx.DBTX) documents.Repository
	Tokens(db dbx.DBTX) tokens.Repository
}
