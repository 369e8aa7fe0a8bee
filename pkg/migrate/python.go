package migrate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

var (
	xrangeRe     = regexp.MustCompile(`\bxrange\(`)
	hasKeyRe     = regexp.MustCompile(`([\w.\[\]]+)\.has_key\(([^)]*)\)`)
	printStmtRe  = regexp.MustCompile(`(?m)^(\s*)print\s+([^(\s].*?)\s*$`)
	formatCallRe = regexp.MustCompile(`\.format\(`)
)

// PythonMigrator modernizes Python 2 idioms to Python 3. Like the React
// migrator it is heuristic: it rewrites the mechanical substitutions
// (xrange, has_key, print statements) and reports everything subtler as
// plan steps for a human.
type PythonMigrator struct{}

// NewPythonMigrator creates the python3 migrator.
func NewPythonMigrator() *PythonMigrator {
	return &PythonMigrator{}
}

// Name implements Migrator.
func (m *PythonMigrator) Name() string { return "python3" }

// Description implements Migrator.
func (m *PythonMigrator) Description() string {
	return "Rewrites Python 2 idioms (xrange, has_key, print statements) for Python 3"
}

// CanMigrate implements Migrator.
func (m *PythonMigrator) CanMigrate(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".py"
}

// Migrate applies the mechanical Python 2 to 3 substitutions.
func (m *PythonMigrator) Migrate(content, path string) (string, error) {
	out := xrangeRe.ReplaceAllString(content, "range(")
	out = hasKeyRe.ReplaceAllString(out, "$2 in $1")
	out = printStmtRe.ReplaceAllString(out, "${1}print(${2})")
	return out, nil
}

// Analyze reports Python 2 idioms and modernization suggestions without
// rewriting. A file that does not parse as Python 3 is recorded as a
// breaking change, since it may contain Python 2 syntax (e.g. a print
// statement) that blocks automatic migration.
func (m *PythonMigrator) Analyze(content, path string) *Plan {
	plan := &Plan{}

	if _, err := parser.ParseString(content+"\n", py.ExecMode); err != nil {
		plan.AddBreakingChange(fmt.Sprintf(
			"syntax error: file could not be parsed as Python 3 (may contain Python 2 syntax): %v", err))
		return plan
	}

	if xrangeRe.MatchString(content) {
		plan.AddStep(Step{
			Description: "Replace 'xrange' with 'range'",
			OldCode:     "xrange(...)",
			NewCode:     "range(...)",
			FilePath:    path,
		})
	}
	if hasKeyRe.MatchString(content) {
		plan.AddStep(Step{
			Description: "Replace 'dict.has_key(k)' with 'k in dict'",
			OldCode:     "d.has_key(k)",
			NewCode:     "k in d",
			FilePath:    path,
		})
	}
	if formatCallRe.MatchString(content) {
		plan.AddStep(Step{
			Description: "Suggestion: use f-strings instead of str.format (Python 3.6+)",
			OldCode:     "str.format(...)",
			NewCode:     "f'...'",
			FilePath:    path,
		})
	}

	return plan
}
