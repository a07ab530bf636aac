package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNoServer    = errors.New("no server configured")
	ErrSave        = errors.New("save failed")

	// ErrConflict means the server copy changed after the local entry was
	// based on it. Retrying with force overwrites the server copy.
	ErrConflict = fmt.Errorf("server data changed since last sync: %w", common.ErrVersionConflict)
)

// SaveError is a failed push that is not a conflict. Status is 0 when the
// request never got an answer.
type SaveError struct {
	Status  int
	Message string
}

func (e *SaveError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("save failed: %s", e.Message)
	}
	return fmt.Sprintf("save failed (HTTP %d): %s", e.Status, e.Message)
}

func (e *SaveError) Unwrap() error { return ErrSave }
