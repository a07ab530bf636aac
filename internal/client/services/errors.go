package services

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dmitrijs2005/teamdb/internal/common"
)

// NoDataError is returned when no snapshot source produced data. Causes
// holds why each source failed.
type NoDataError struct {
	SnapshotFile string
	Causes       *multierror.Error
}

func (e *NoDataError) Error() string {
	msg := fmt.Sprintf("%s: configure a server URL or provide %s", common.ErrNoDataAvailable, e.SnapshotFile)
	if e.Causes.ErrorOrNil() != nil {
		msg += " (" + e.Causes.Error() + ")"
	}
	return msg
}

func (e *NoDataError) Is(target error) bool {
	return target == common.ErrNoDataAvailable
}

func (e *NoDataError) Unwrap() error {
	return e.Causes.ErrorOrNil()
}

// sourceError labels a failure with the source it came from.
type sourceError struct {
	source string
	err    error
}

func (e *sourceError) Error() string { return e.source + ": " + e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }
