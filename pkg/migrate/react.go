package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	classComponentRe = regexp.MustCompile(`class\s+(\w+)\s+extends\s+(?:React\.)?Component\s*{`)
	renderMethodRe   = regexp.MustCompile(`render\s*\(\)\s*{`)
)

// reactExtensions are the file types the React migrator considers.
var reactExtensions = map[string]bool{
	".jsx": true, ".tsx": true, ".js": true, ".ts": true,
}

// ReactHooksMigrator converts React class components to functional
// components with hooks. It is a regex-based heuristic, not a JS
// parser: state migration is flagged with a TODO rather than attempted.
type ReactHooksMigrator struct{}

// NewReactHooksMigrator creates the react-hooks migrator.
func NewReactHooksMigrator() *ReactHooksMigrator {
	return &ReactHooksMigrator{}
}

// Name implements Migrator.
func (m *ReactHooksMigrator) Name() string { return "react-hooks" }

// Description implements Migrator.
func (m *ReactHooksMigrator) Description() string {
	return "Converts React class components to functional components with hooks"
}

// CanMigrate implements Migrator.
func (m *ReactHooksMigrator) CanMigrate(path string) bool {
	return reactExtensions[strings.ToLower(filepath.Ext(path))]
}

// Migrate rewrites the first class component in content as a functional
// component. Content without a class component, or whose render method
// cannot be located, is returned unchanged.
func (m *ReactHooksMigrator) Migrate(content, path string) (string, error) {
	match := classComponentRe.FindStringSubmatch(content)
	if match == nil {
		return content, nil
	}
	componentName := match[1]

	renderLoc := renderMethodRe.FindStringIndex(content)
	if renderLoc == nil {
		// Class component without a recognizable render method is
		// beyond this heuristic; leave the file alone.
		return content, nil
	}

	body, ok := matchBraces(content, renderLoc[1])
	if !ok {
		return content, nil
	}

	body = strings.TrimSpace(strings.ReplaceAll(body, "this.props", "props"))

	stateNote := ""
	if strings.Contains(content, "this.state") {
		stateNote = "\n  // TODO: migrate state to useState\n  // const [state, setState] = useState(initialState);"
	}

	rewritten := fmt.Sprintf(`import React, { useState, useEffect } from 'react';

const %s = (props) => {%s

  %s
};

export default %s;
`, componentName, stateNote, body, componentName)

	return rewritten, nil
}

// Analyze implements Analyzer: it reports what Migrate would change.
func (m *ReactHooksMigrator) Analyze(content, path string) *Plan {
	plan := &Plan{}
	match := classComponentRe.FindStringSubmatch(content)
	if match == nil {
		return plan
	}

	plan.AddStep(Step{
		Description: fmt.Sprintf("Convert class component %s to a functional component", match[1]),
		OldCode:     match[0],
		NewCode:     fmt.Sprintf("const %s = (props) => { ... }", match[1]),
		FilePath:    path,
	})
	if strings.Contains(content, "this.state") {
		plan.AddBreakingChange("component uses this.state; state must be migrated to useState manually")
	}
	if renderMethodRe.FindStringIndex(content) == nil {
		plan.AddBreakingChange("render method not found; component cannot be rewritten automatically")
	}
	return plan
}

// matchBraces returns the text between the opening brace just before
// start and its matching close brace. ok is false when the braces never
// balance.
func matchBraces(content string, start int) (string, bool) {
	depth := 1
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start:i], true
			}
		}
	}
	return "", false
}

// ProjectUsesReact reports whether the package.json in dir declares a
// react dependency. Used by the driver to warn when a react-hooks run
// targets a project that does not appear to use React at all.
func ProjectUsesReact(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	return gjson.GetBytes(data, "dependencies.react").Exists() ||
		gjson.GetBytes(data, "devDependencies.react").Exists()
}
