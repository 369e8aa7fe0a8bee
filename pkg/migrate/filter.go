package migrate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FileFilter narrows a migration run to files matching a boolean
// expression. The expression is compiled once and evaluated per file
// with the environment:
//
//	name - base filename ("Button.jsx")
//	ext  - lowercase extension with dot (".jsx")
//	path - path relative to the run root, forward slashes
//	size - file size in bytes
//
// Example: `ext == ".jsx" && size < 100000 && !hasPrefix(path, "vendor/")`
//
// Expressions are sandboxed by expr's compile-time environment check:
// only the variables above are visible, and no functions with side
// effects are exposed.
type FileFilter struct {
	source  string
	program *vm.Program
}

// filterEnv is the per-file evaluation environment.
type filterEnv struct {
	Name string `expr:"name"`
	Ext  string `expr:"ext"`
	Path string `expr:"path"`
	Size int64  `expr:"size"`
}

// NewFileFilter compiles a filter expression. An empty expression
// yields a nil filter, which matches everything.
func NewFileFilter(expression string) (*FileFilter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}

	return &FileFilter{source: expression, program: program}, nil
}

// Match evaluates the filter for one file. A nil filter matches.
func (f *FileFilter) Match(relPath string, size int64) (bool, error) {
	if f == nil {
		return true, nil
	}

	env := filterEnv{
		Name: filepath.Base(relPath),
		Ext:  strings.ToLower(filepath.Ext(relPath)),
		Path: filepath.ToSlash(relPath),
		Size: size,
	}

	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("filter evaluation failed for %s: %w", relPath, err)
	}

	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not evaluate to a boolean for %s", relPath)
	}
	return matched, nil
}

// String returns the filter source, or "" for a nil filter.
func (f *FileFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}
