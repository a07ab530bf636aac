package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamdb/internal/common"
	"github.com/dmitrijs2005/teamdb/internal/cryptox"
	"github.com/dmitrijs2005/teamdb/internal/server/repositories/repomanager"
)

// TokenService issues API tokens and checks them on writes. Only salted
// hashes are stored; the token itself is shown once to the caller.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	iterations  int
	newToken    func() (string, error)
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, iterations int) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		iterations:  iterations,
		newToken:    cryptox.NewToken,
	}
}

// Issue creates a token for email, replacing any earlier one.
func (s *TokenService) Issue(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrMalformedInput)
	}

	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	h, err := cryptox.HashToken(token, s.iterations)
	if err != nil {
		return "", fmt.Errorf("error hashing token: %w", err)
	}
	if err := s.repomanager.Tokens(s.db).Upsert(ctx, email, h); err != nil {
		return "", fmt.Errorf("error storing token: %w", err)
	}
	return token, nil
}

// Verify returns nil when token belongs to email and common.ErrInvalidToken
// when it does not. Unknown emails are reported the same way.
func (s *TokenService) Verify(ctx context.Context, email, token string) error {
	t, err := s.repomanager.Tokens(s.db).Find(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error searching token: %w", err)
	}
	if !t.Hash.Verify(token) {
		return common.ErrInvalidToken
	}
	return nil
}
