// Package cryptox generates API tokens and derives the salted hashes the
// server stores for them.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 100000
	SaltSize          = 16
	KeySize           = 32
	TokenBytes        = 24
)

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// NewToken returns a URL-safe random token.
func NewToken() (string, error) {
	b, err := RandomBytes(TokenBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokenHash is what the server persists for an issued token.
type TokenHash struct {
	Salt       string // hex
	Hash       string // hex
	Iterations int
}

// DeriveKey is pbkdf2-sha256 over token and salt.
func DeriveKey(token string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(token), salt, iterations, KeySize, sha256.New)
}

// HashToken salts and hashes token. iterations <= 0 means DefaultIterations.
func HashToken(token string, iterations int) (TokenHash, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	salt, err := RandomBytes(SaltSize)
	if err != nil {
		return TokenHash{}, err
	}
	return TokenHash{
		Salt:       hex.EncodeToString(salt),
		Hash:       hex.EncodeToString(DeriveKey(token, salt, iterations)),
		Iterations: iterations,
	}, nil
}

// Verify reports whether token matches h, in constant time.
func (h TokenHash) Verify(token string) bool {
	salt, err := hex.DecodeString(h.Salt)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(h.Hash)
	if err != nil || h.Iterations <= 0 {
		return false
	}
	got := DeriveKey(token, salt, h.Iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}
