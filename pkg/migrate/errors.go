package migrate

import (
	"fmt"
	"time"
)

// OperationalError wraps a failure with the migration context it
// occurred in: which operation, which migration type, which file. This
// keeps per-file failures debuggable after a long run.
type OperationalError struct {
	Operation string    // What operation was being performed
	Migration string    // Which migration type
	File      string    // Which file (if applicable)
	Timestamp time.Time // When the error occurred
	Cause     error     // Underlying error
}

// NewOperationalError creates an OperationalError wrapping cause.
//
// Returns nil if cause is nil (no error to wrap).
func NewOperationalError(operation, migration, file string, cause error) *OperationalError {
	if cause == nil {
		return nil
	}
	return &OperationalError{
		Operation: operation,
		Migration: migration,
		File:      file,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// Error implements the error interface.
//
// Format: "[timestamp] operation: migration={type} file={path}: {cause}"
// If the file is empty, it is omitted from the message.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	timestamp := e.Timestamp.Format(time.RFC3339)
	if e.File != "" {
		return fmt.Sprintf("[%s] %s: migration=%s file=%s: %v",
			timestamp, e.Operation, e.Migration, e.File, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: migration=%s: %v",
		timestamp, e.Operation, e.Migration, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
