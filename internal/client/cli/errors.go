package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

var (
	// ErrRejected is returned when the directory refuses a change, for
	// example an empty or duplicate name.
	ErrRejected = errors.New("change rejected")

	ErrUsage = errors.New("usage")
)

func usage(text string) error {
	return fmt.Errorf("%w: %s", ErrUsage, text)
}

func notFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, common.ErrorNotFound)
}
