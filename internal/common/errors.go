// Package common defines sentinel errors shared by the client and server
// sides of teamdb. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Document errors.
	ErrMalformedInput = errors.New("malformed input")
	ErrorValidation   = errors.New("validation error")

	// Reconciliation and sync errors.
	ErrNoDataAvailable = errors.New("no data available")
	ErrVersionConflict = errors.New("version conflict")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
)
