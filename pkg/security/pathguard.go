package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// MaxPathLength is the exclusive upper bound on raw path input length.
// A path of exactly this length is rejected.
const MaxPathLength = 4096

// PathGuard converts caller-supplied path strings into canonical paths
// guaranteed not to escape its base directory.
//
// It implements defense-in-depth with multiple validation layers:
//   - Lexical validation (length, control characters, dangerous substrings)
//   - Extension allowlist
//   - Symbolic link resolution
//   - Containment verification against the resolved base
//
// Thread-safe for concurrent use.
type PathGuard struct {
	basePath     string
	resolvedBase string
	validations  uint64
	rejections   uint64
}

// NewPathGuard creates a path guard for the given base directory.
//
// The base directory must be an absolute path to an existing directory.
// All validated paths are restricted to this directory and its
// subdirectories.
func NewPathGuard(basePath string) (*PathGuard, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(basePath) {
		return nil, fmt.Errorf("base path must be absolute: %s", basePath)
	}

	info, err := os.Stat(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("base path does not exist: %s", basePath)
		}
		return nil, fmt.Errorf("cannot access base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path is not a directory: %s", basePath)
	}

	resolvedBase, err := filepath.EvalSymlinks(basePath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve symbolic links in base path: %w", err)
	}

	return &PathGuard{
		basePath:     basePath,
		resolvedBase: resolvedBase,
	}, nil
}

// Base returns the resolved base directory the guard validates against.
func (g *PathGuard) Base() string {
	return g.resolvedBase
}

// Sanitize validates that userPath is safe to access within the base
// directory and returns its canonical (absolute, symlink-resolved) form.
//
// The returned path is guaranteed to be absolute, within the base
// directory after symlink resolution, to exist, and to carry an
// allowlisted extension. Every rejection is an *Error with a Reason.
func (g *PathGuard) Sanitize(userPath string) (string, error) {
	atomic.AddUint64(&g.validations, 1)

	if err := g.lexicalCheck(userPath); err != nil {
		atomic.AddUint64(&g.rejections, 1)
		return "", err
	}

	if err := checkExtension(userPath); err != nil {
		atomic.AddUint64(&g.rejections, 1)
		return "", err
	}

	resolved, err := g.resolve(userPath)
	if err != nil {
		atomic.AddUint64(&g.rejections, 1)
		return "", err
	}
	return resolved, nil
}

// SanitizeDirectory validates a directory path. It applies the same
// traversal, length, and control-character checks as Sanitize but skips
// the extension allowlist, since directories have no extension semantics.
func (g *PathGuard) SanitizeDirectory(userPath string) (string, error) {
	atomic.AddUint64(&g.validations, 1)

	if err := g.lexicalCheck(userPath); err != nil {
		atomic.AddUint64(&g.rejections, 1)
		return "", err
	}

	resolved, err := g.resolve(userPath)
	if err != nil {
		atomic.AddUint64(&g.rejections, 1)
		return "", err
	}
	return resolved, nil
}

// RelativePath returns absPath relative to the base directory using
// forward-slash separators. If absPath is not a descendant of the base,
// it falls back to the final path segment rather than failing. This is
// a deliberate degraded fallback for display purposes, not an error path.
func (g *PathGuard) RelativePath(absPath string) string {
	rel, err := filepath.Rel(g.resolvedBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(absPath)
	}
	return filepath.ToSlash(rel)
}

// Stats returns validation statistics for monitoring.
func (g *PathGuard) Stats() (validations, rejections uint64) {
	return atomic.LoadUint64(&g.validations), atomic.LoadUint64(&g.rejections)
}

// lexicalCheck applies the string-only layers: length bounds, control
// characters, the dangerous-pattern denylist, and absolute/Windows forms.
func (g *PathGuard) lexicalCheck(userPath string) error {
	if userPath == "" || len(userPath) >= MaxPathLength {
		return newError(ReasonInvalidLength, userPath,
			"path length must be between 1 and %d characters", MaxPathLength-1)
	}

	if ch, ok := findControlCharacter(userPath); ok {
		return newError(ReasonControlCharacter, userPath,
			"path contains control character %#x", ch)
	}

	for _, pattern := range DangerousPathPatterns {
		if strings.Contains(userPath, pattern) {
			return newError(ReasonDangerousPattern, userPath,
				"dangerous pattern in path: %q", pattern)
		}
	}

	// Absolute-root escapes and Windows drive/UNC forms.
	if strings.HasPrefix(userPath, "/") || strings.HasPrefix(userPath, "\\") {
		return newError(ReasonDangerousPattern, userPath,
			"dangerous pattern in path: absolute path")
	}
	if isWindowsDrivePath(userPath) {
		return newError(ReasonDangerousPattern, userPath,
			"dangerous pattern in path: drive letter")
	}

	return nil
}

// resolve joins the path onto the base, resolves symlinks, and verifies
// containment. Resolution failure (including a nonexistent target) is a
// distinct verdict rather than being treated as a new file.
func (g *PathGuard) resolve(userPath string) (string, error) {
	fullPath := filepath.Join(g.basePath, filepath.Clean(userPath))

	resolved, err := filepath.EvalSymlinks(fullPath)
	if err != nil {
		return "", newError(ReasonResolutionFailed, userPath,
			"path resolution failed: %v", err)
	}

	rel, err := filepath.Rel(g.resolvedBase, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", newError(ReasonOutsideBase, userPath,
			"resolved path escapes base directory")
	}

	return resolved, nil
}

// Sanitize is a convenience function that validates a single path
// without holding onto a PathGuard. For repeated validations, create a
// PathGuard to avoid re-resolving the base directory.
func Sanitize(userPath, baseDir string) (string, error) {
	guard, err := NewPathGuard(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	return guard.Sanitize(userPath)
}

// SanitizeDirectory is the one-off counterpart of
// PathGuard.SanitizeDirectory.
func SanitizeDirectory(userPath, baseDir string) (string, error) {
	guard, err := NewPathGuard(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	return guard.SanitizeDirectory(userPath)
}

// RelativePath returns absPath relative to baseDir with forward-slash
// separators, falling back to the final path segment when absPath is
// not a descendant of baseDir.
func RelativePath(absPath, baseDir string) string {
	rel, err := filepath.Rel(baseDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(absPath)
	}
	return filepath.ToSlash(rel)
}

// IsSafeFilename reports whether name is safe to use as a bare filename.
// It is a pure predicate with no filesystem access: it rejects path
// separators, leading or trailing whitespace, a trailing dot, and
// reserved device names.
func IsSafeFilename(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	if name != strings.TrimSpace(name) {
		return false
	}
	if strings.HasSuffix(name, ".") {
		return false
	}

	// Reserved device names apply to the name with any extension stripped.
	base := strings.ToUpper(name)
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	for _, reserved := range ReservedFilenames {
		if base == reserved {
			return false
		}
	}

	return true
}

// checkExtension enforces the extension allowlist, case-insensitively.
func checkExtension(userPath string) error {
	ext := strings.ToLower(filepath.Ext(userPath))
	if !AllowedExtensions[ext] {
		return newError(ReasonExtensionDenied, userPath,
			"file extension not allowed: %q", ext)
	}
	return nil
}

// findControlCharacter returns the first control character in s, if any.
// NUL and other C0 controls are never legitimate in a path.
func findControlCharacter(s string) (rune, bool) {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return r, true
		}
	}
	return 0, false
}

// isWindowsDrivePath reports whether s looks like a Windows drive-letter
// or UNC path (C:\..., C:/..., \\host\share).
func isWindowsDrivePath(s string) bool {
	if len(s) >= 2 && s[1] == ':' {
		c := s[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return strings.HasPrefix(s, `\\`)
}
