package compliance

import (
	"fmt"
	"strings"

	"github.com/dshills/codeshift/pkg/safeio"
	"github.com/dshills/codeshift/pkg/security"
)

// Finding is one PII/PHI match in a scanned file.
type Finding struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Confidence     string `json:"confidence"`
	Regulation     string `json:"regulation"`
	File           string `json:"file"`
	Line           int    `json:"line"`
	Column         int    `json:"column"`
	Match          string `json:"match"` // Truncated and sanitized for display
	Recommendation string `json:"recommendation"`
}

// ScanReport summarizes a directory scan.
type ScanReport struct {
	FilesScanned int       `json:"files_scanned"`
	FilesWithPII int       `json:"files_with_pii"`
	Findings     []Finding `json:"findings"`
}

// Detector scans guard-validated files for personal data. It shares the
// migration pipeline's path safety: files outside the project root or
// with disallowed extensions are never opened.
type Detector struct {
	guard    *security.PathGuard
	patterns []Pattern
}

// NewDetector creates a detector rooted at projectPath using the full
// pattern tables.
func NewDetector(projectPath string) (*Detector, error) {
	guard, err := security.NewPathGuard(projectPath)
	if err != nil {
		return nil, err
	}
	return &Detector{guard: guard, patterns: AllPatterns()}, nil
}

// ScanFile scans a single file (path relative to the project root).
func (d *Detector) ScanFile(path string) ([]Finding, error) {
	content, err := safeio.ReadFile(path, d.guard.Base())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var findings []Finding
	for _, pattern := range d.patterns {
		for _, loc := range pattern.Regexp.FindAllStringIndex(content, -1) {
			line, column := position(content, loc[0])
			findings = append(findings, Finding{
				Type:           pattern.Name,
				Severity:       pattern.Severity,
				Confidence:     pattern.Confidence,
				Regulation:     pattern.Regulation,
				File:           path,
				Line:           line,
				Column:         column,
				Match:          truncateMatch(content[loc[0]:loc[1]]),
				Recommendation: pattern.Recommendation,
			})
		}
	}
	return findings, nil
}

// ScanDir walks every candidate file under the project root and
// aggregates findings. Files that fail path validation are skipped, not
// fatal: a scan should report on everything it can reach.
func (d *Detector) ScanDir(paths []string) (*ScanReport, error) {
	report := &ScanReport{}
	for _, path := range paths {
		findings, err := d.ScanFile(path)
		if err != nil {
			continue
		}
		report.FilesScanned++
		if len(findings) > 0 {
			report.FilesWithPII++
			report.Findings = append(report.Findings, findings...)
		}
	}
	return report, nil
}

// position converts a byte offset into 1-based line and column numbers.
func position(content string, offset int) (line, column int) {
	prefix := content[:offset]
	line = strings.Count(prefix, "\n") + 1
	if idx := strings.LastIndex(prefix, "\n"); idx >= 0 {
		column = offset - idx
	} else {
		column = offset + 1
	}
	return line, column
}

// truncateMatch bounds the matched text so findings are safe to print
// and log without reproducing the full secret.
func truncateMatch(match string) string {
	const maxLen = 50
	if len(match) > maxLen {
		return security.SanitizeUserInput(match[:maxLen]) + "..."
	}
	return security.SanitizeUserInput(match)
}
