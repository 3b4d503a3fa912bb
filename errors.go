package sqlbridge

import "fmt"

// ErrInvalidArgument reports an empty connection URL or SQL text.
// Raised before any I/O is attempted.
type ErrInvalidArgument struct {
	Name string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("%s cannot be empty", e.Name)
}

// ErrQueryExecution reports a failure while connecting, executing the
// statement or draining its results.
type ErrQueryExecution struct {
	Cause error
}

func (e *ErrQueryExecution) Error() string {
	return fmt.Sprintf("error executing query: %v", e.Cause)
}

func (e *ErrQueryExecution) Unwrap() error {
	return e.Cause
}
