// Package models holds the rows the server stores in PostgreSQL.
package models

import (
	"time"

	"github.com/dmitrijs2005/teamdb/internal/cryptox"
)

// StoredDocument is the current directory snapshot. Body is canonical JSON.
type StoredDocument struct {
	Version    string
	Body       []byte
	ModifiedAt time.Time
	ModifiedBy string
}

// Backup is a previous snapshot kept after a save replaced it.
type Backup struct {
	ID string
	StoredDocument
	CreatedAt time.Time
}

// Token is the stored hash of an issued access token.
type Token struct {
	Email     string
	Hash      cryptox.TokenHash
	CreatedAt time.Time
}
