package migrate

// Step is a single suggested change in a migration plan.
type Step struct {
	Description string `json:"description"`
	OldCode     string `json:"old_code,omitempty"`
	NewCode     string `json:"new_code,omitempty"`
	FilePath    string `json:"file_path"`
}

// Plan collects the suggested steps and breaking changes found while
// analyzing a file. A plan with no steps and no breaking changes means
// the file needs no work.
type Plan struct {
	Steps           []Step   `json:"steps"`
	BreakingChanges []string `json:"breaking_changes,omitempty"`
}

// AddStep appends a suggested change.
func (p *Plan) AddStep(step Step) {
	p.Steps = append(p.Steps, step)
}

// AddBreakingChange records an issue that blocks automatic migration.
func (p *Plan) AddBreakingChange(msg string) {
	p.BreakingChanges = append(p.BreakingChanges, msg)
}

// HasWork reports whether the plan found anything at all.
func (p *Plan) HasWork() bool {
	return len(p.Steps) > 0 || len(p.BreakingChanges) > 0
}

// Analyzer is implemented by migrators that can produce a plan without
// rewriting anything.
type Analyzer interface {
	Analyze(content, path string) *Plan
}
