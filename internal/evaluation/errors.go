package evaluation

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout marks an evaluation that ran past its deadline.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrFieldOverwrite marks a stage trying to set a field that is already populated.
	ErrFieldOverwrite = errors.New("field already populated")
	// ErrStagePanic marks a stage that panicked.
	ErrStagePanic = errors.New("stage panicked")
)

// StageFault is an unexpected failure inside a pipeline stage. Absence of a
// value is never a fault.
type StageFault struct {
	Stage string
	Err   error
}

func (f *StageFault) Error() string {
	return fmt.Sprintf("stage %s: %v", f.Stage, f.Err)
}

func (f *StageFault) Unwrap() error {
	return f.Err
}
