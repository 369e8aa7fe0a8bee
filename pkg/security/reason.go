package security

import (
	"errors"
	"fmt"
	"time"
)

// Reason identifies which validation rule rejected an input.
type Reason string

const (
	// Path-safety reasons.
	ReasonInvalidLength    Reason = "invalid_length"
	ReasonControlCharacter Reason = "control_character"
	ReasonDangerousPattern Reason = "dangerous_pattern"
	ReasonExtensionDenied  Reason = "extension_not_allowed"
	ReasonResolutionFailed Reason = "path_resolution_failed"
	ReasonOutsideBase      Reason = "outside_base_directory"

	// Pattern-safety reasons.
	ReasonForbiddenKeyword Reason = "forbidden_keyword"
	ReasonForbiddenModule  Reason = "forbidden_module"
	ReasonTooManyLines     Reason = "too_many_lines"
	ReasonLineTooLong      Reason = "line_too_long"
	ReasonPatternTooLarge  Reason = "pattern_too_large"
	ReasonSyntaxError      Reason = "syntax_error"

	// Migration-type reason.
	ReasonUnknownMigration Reason = "unknown_migration_type"
)

// Error represents a security validation failure with context for logging.
//
// Tests and callers should branch on Reason rather than matching the
// detail text, which exists for humans.
type Error struct {
	Reason    Reason    // Which rule rejected the input
	Detail    string    // Human-readable explanation, names the violated rule
	Input     string    // Sanitized copy of the offending input (may be empty)
	Timestamp time.Time // When the validation error occurred
}

// Error implements the error interface.
//
// Format: "security violation ({Reason}): {Detail}"
func (e *Error) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("security violation (%s): %s (input: %s)", e.Reason, e.Detail, e.Input)
	}
	return fmt.Sprintf("security violation (%s): %s", e.Reason, e.Detail)
}

// newError builds an *Error with the current timestamp. The input is
// sanitized before being stored so rejections are always safe to log.
func newError(reason Reason, input, format string, args ...interface{}) *Error {
	return &Error{
		Reason:    reason,
		Detail:    fmt.Sprintf(format, args...),
		Input:     SanitizeUserInput(input),
		Timestamp: time.Now(),
	}
}

// IsReason reports whether err is a security *Error with the given reason.
func IsReason(err error, reason Reason) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Reason == reason
}

// ReasonOf extracts the reason code from err, or "" if err is not a
// security *Error.
func ReasonOf(err error) Reason {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	return se.Reason
}
