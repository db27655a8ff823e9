package engine

import (
	"fmt"

	"github.com/clinicore/intake/internal/model"
)

// CriticalWriteError is the one condition that fails a turn outright:
// a critical-priority candidate could not be persisted. The caller needs
// to know a safety-critical fact was not saved.
type CriticalWriteError struct {
	Candidate model.FactCandidate
	Store     model.StoreName
	Err       error
}

func (e *CriticalWriteError) Error() string {
	return fmt.Sprintf("critical candidate %q (%s) not persisted to %s store: %v",
		e.Candidate.Text, e.Candidate.Kind, e.Store, e.Err)
}

func (e *CriticalWriteError) Unwrap() error {
	return e.Err
}
