package ingest

import "fmt"

// ValidationError reports a malformed event payload. It is detected
// before any write and maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DependencyError reports a collaborator failure (dataset write, query,
// cache). It maps to HTTP 500; the underlying cause is logged but never
// exposed verbatim to the caller.
type DependencyError struct {
	Op    string
	Cause error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
}

func (e *DependencyError) Unwrap() error { return e.Cause }
