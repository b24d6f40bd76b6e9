package probe

import (
	"errors"
	"fmt"
)

// ErrExecution indicates the ssh binary could not be started.
var ErrExecution = errors.New("cannot run ssh")

// ExecutionError reports a probe command that never ran.
type ExecutionError struct {
	Binary string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Binary, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}
