// Package apperr defines the error taxonomy shared by the persistence and
// export components. The transport layer matches these with errors.As to
// pick a status code; the wrapped causes stay server-side.
package apperr

import "fmt"

// ValidationError reports malformed caller input. Maps to a 4xx response
// and is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// StorageError wraps a backend failure: unreachable database, query error,
// pool exhaustion or timeout. Surfaced to callers as a generic 5xx.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExportError is raised when the bulk read phase of an export fails. Hint
// carries an operational suggestion since exports are run for backups.
type ExportError struct {
	Hint string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export: %v (%s)", e.Err, e.Hint)
}

func (e *ExportError) Unwrap() error { return e.Err }
