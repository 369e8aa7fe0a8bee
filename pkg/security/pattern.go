package security

import (
	"strings"

	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

// Size limits for migration patterns. A pattern exceeding any of these
// is rejected before any further inspection.
const (
	// MaxPatternSize is the maximum total pattern size in bytes.
	MaxPatternSize = 10 * 1024
	// MaxLineLength is the maximum length of a single pattern line.
	MaxLineLength = 1000
	// MaxPatternLines is the maximum number of lines in a pattern.
	MaxPatternLines = 1000
	// MaxDisplayLength is the truncation bound applied by SanitizeUserInput.
	MaxDisplayLength = 200
)

// ValidatePattern statically checks that a code fragment is safe to
// treat as a trusted migration pattern. The pattern is never executed;
// it is only parsed.
//
// Checks run in a fixed order so error reasons are deterministic:
// line count, per-line length, total size, control characters,
// forbidden keywords, forbidden module imports, and finally a full
// Python parse. The keyword and module scans are case-insensitive
// substring matches over the whole text, including comments and string
// literals.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return newError(ReasonInvalidLength, "", "pattern cannot be empty")
	}

	lines := strings.Split(pattern, "\n")
	if len(lines) > MaxPatternLines {
		return newError(ReasonTooManyLines, "",
			"pattern has too many lines: %d (limit %d)", len(lines), MaxPatternLines)
	}
	for i, line := range lines {
		if len(line) > MaxLineLength {
			return newError(ReasonLineTooLong, "",
				"pattern line %d exceeds maximum length of %d", i+1, MaxLineLength)
		}
	}
	if len(pattern) > MaxPatternSize {
		return newError(ReasonPatternTooLarge, "",
			"pattern size exceeds limit of %d bytes", MaxPatternSize)
	}

	if ch, ok := findPatternControlCharacter(pattern); ok {
		return newError(ReasonControlCharacter, "",
			"pattern contains control character %#x", ch)
	}

	lower := strings.ToLower(pattern)
	for _, keyword := range ForbiddenKeywords {
		if strings.Contains(lower, keyword) {
			return newError(ReasonForbiddenKeyword, "",
				"forbidden keyword detected: %s", keyword)
		}
	}
	for _, module := range ForbiddenModules {
		if strings.Contains(lower, "import "+module) {
			return newError(ReasonForbiddenModule, "",
				"forbidden module import: %s", module)
		}
	}

	// Parse, never execute. The trailing newline terminates a final
	// statement the way the grammar expects.
	if _, err := parser.ParseString(pattern+"\n", py.ExecMode); err != nil {
		return newError(ReasonSyntaxError, "", "invalid Python syntax: %v", err)
	}

	return nil
}

// ValidateFilePath is the string-only counterpart of PathGuard.Sanitize
// for call sites that have no base directory or filesystem context. It
// rejects the same traversal tokens, home shortcuts, and shell
// metacharacters, plus a denylist of suspicious extensions, purely
// syntactically.
func ValidateFilePath(path string) error {
	if path == "" || len(path) >= MaxPathLength {
		return newError(ReasonInvalidLength, path,
			"path length must be between 1 and %d characters", MaxPathLength-1)
	}

	if ch, ok := findControlCharacter(path); ok {
		return newError(ReasonControlCharacter, path,
			"path contains control character %#x", ch)
	}

	for _, pattern := range DangerousPathPatterns {
		if strings.Contains(path, pattern) {
			return newError(ReasonDangerousPattern, path,
				"dangerous pattern in path: %q", pattern)
		}
	}

	lower := strings.ToLower(path)
	for _, ext := range SuspiciousExtensions {
		if strings.HasSuffix(lower, ext) {
			return newError(ReasonExtensionDenied, path,
				"suspicious file extension: %q", ext)
		}
	}

	return nil
}

// ValidateMigrationType checks name against the fixed allowlist of
// supported migration identifiers. Anything else fails, including empty
// strings and strings containing whitespace or shell metacharacters.
func ValidateMigrationType(name string) error {
	if name == "" {
		return newError(ReasonUnknownMigration, "", "migration type cannot be empty")
	}
	if !AllowedMigrationTypes[name] {
		return newError(ReasonUnknownMigration, name,
			"unsupported migration type: %s", name)
	}
	return nil
}

// SanitizeUserInput makes arbitrary input safe for logging and display.
// It never fails: control characters (including newlines and tabs) are
// stripped, the result is truncated to MaxDisplayLength characters with
// an ellipsis marker, and surrounding whitespace is trimmed.
func SanitizeUserInput(input string) string {
	if input == "" {
		return ""
	}

	sanitized := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input)

	if runes := []rune(sanitized); len(runes) > MaxDisplayLength {
		sanitized = string(runes[:MaxDisplayLength]) + "..."
	}

	return strings.TrimSpace(sanitized)
}

// findPatternControlCharacter scans for control characters that are not
// legitimate pattern whitespace (newline, carriage return, tab).
func findPatternControlCharacter(s string) (rune, bool) {
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r == 0x7f {
			return r, true
		}
	}
	return 0, false
}
