package security

import (
	"strings"
	"testing"
)

func TestValidatePattern_Accepts(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"simple assignment", "x = 1"},
		{"function definition", "def f():\n    return 1"},
		{"class definition", "class Widget:\n    pass"},
		{"comprehension", "squares = [n * n for n in values]"},
		{"multiline with tabs", "if flag:\n\tresult = 2"},
		{"string formatting", `label = "value: {}".format(count)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePattern(tt.pattern); err != nil {
				t.Errorf("ValidatePattern(%q): %v", tt.pattern, err)
			}
		})
	}
}

func TestValidatePattern_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		reason  Reason
	}{
		{"empty pattern", "", ReasonInvalidLength},
		{"eval call", `eval("1+1")`, ReasonForbiddenKeyword},
		{"exec call", `exec(code)`, ReasonForbiddenKeyword},
		{"dunder import", `__import__("x")`, ReasonForbiddenKeyword},
		{"keyword inside string literal", `s = "please eval this"`, ReasonForbiddenKeyword},
		{"keyword case-insensitive", "EVAL(x)", ReasonForbiddenKeyword},
		{"os import", "import os", ReasonForbiddenModule},
		{"subprocess import", "import subprocess", ReasonForbiddenModule},
		{"import in comment", "# import sys for later", ReasonForbiddenModule},
		{"too many lines", strings.Repeat("x = 1\n", 1001), ReasonTooManyLines},
		{"line too long", "x = '" + strings.Repeat("a", 1001) + "'", ReasonLineTooLong},
		{"escape character", "x = 1\x1b[0m", ReasonControlCharacter},
		{"unterminated def", "def broken(:", ReasonSyntaxError},
		{"stray indent", "    x = 1\n  y = 2\n bad", ReasonSyntaxError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if err == nil {
				t.Fatalf("ValidatePattern(%q): expected error", tt.pattern)
			}
			if got := ReasonOf(err); got != tt.reason {
				t.Errorf("reason = %s, want %s (err: %v)", got, tt.reason, err)
			}
		})
	}
}

// The size check runs after the line checks, so a pattern can only hit
// it with many short lines under both per-line and line-count limits.
func TestValidatePattern_TotalSize(t *testing.T) {
	line := "x = '" + strings.Repeat("a", 500) + "'\n"
	pattern := strings.TrimSuffix(strings.Repeat(line, 25), "\n")
	if len(pattern) <= MaxPatternSize {
		t.Fatalf("fixture too small: %d bytes", len(pattern))
	}

	err := ValidatePattern(pattern)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := ReasonOf(err); got != ReasonPatternTooLarge {
		t.Errorf("reason = %s, want %s", got, ReasonPatternTooLarge)
	}
}

// Validation is pure: repeated calls on the same input agree.
func TestValidatePatternDeterministic(t *testing.T) {
	inputs := []string{"x = 1", "import os", "def broken(:", ""}
	for _, pattern := range inputs {
		first := ValidatePattern(pattern)
		second := ValidatePattern(pattern)
		if (first == nil) != (second == nil) {
			t.Errorf("verdict changed between calls for %q", pattern)
		}
		if ReasonOf(first) != ReasonOf(second) {
			t.Errorf("reason changed between calls for %q", pattern)
		}
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative source file", "src/app.py", false},
		{"nested path", "a/b/c/d.ts", false},
		{"empty", "", true},
		{"traversal", "../x.py", true},
		{"home", "~/x.py", true},
		{"executable", "tool.exe", true},
		{"executable uppercase", "TOOL.EXE", true},
		{"shared library", "libfoo.so", true},
		{"control character", "a\tb.py", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMigrationType(t *testing.T) {
	for name := range AllowedMigrationTypes {
		if err := ValidateMigrationType(name); err != nil {
			t.Errorf("ValidateMigrationType(%q): %v", name, err)
		}
	}

	invalid := []string{"", "react", "python2", "rm -rf /", "react-hooks "}
	for _, name := range invalid {
		err := ValidateMigrationType(name)
		if err == nil {
			t.Errorf("ValidateMigrationType(%q): expected error", name)
			continue
		}
		if got := ReasonOf(err); got != ReasonUnknownMigration {
			t.Errorf("ValidateMigrationType(%q) reason = %s, want %s", name, got, ReasonUnknownMigration)
		}
	}
}

func TestSanitizeUserInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello", "hello"},
		{"empty", "", ""},
		{"strips newlines", "a\nb\r\nc", "abc"},
		{"strips null bytes", "a\x00b", "ab"},
		{"strips ansi escape", "a\x1b[31mred", "a[31mred"},
		{"trims whitespace", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeUserInput(tt.input); got != tt.want {
				t.Errorf("SanitizeUserInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("truncates long input", func(t *testing.T) {
		got := SanitizeUserInput(strings.Repeat("a", 300))
		want := strings.Repeat("a", MaxDisplayLength) + "..."
		if got != want {
			t.Errorf("got %d chars, want %d chars with ellipsis", len(got), len(want))
		}
	})

	t.Run("exactly at limit untouched", func(t *testing.T) {
		input := strings.Repeat("a", MaxDisplayLength)
		if got := SanitizeUserInput(input); got != input {
			t.Errorf("input at the display limit should pass through unchanged")
		}
	})
}

func TestErrorReasonMatching(t *testing.T) {
	err := ValidatePattern("import os")
	if !IsReason(err, ReasonForbiddenModule) {
		t.Error("IsReason should match ReasonForbiddenModule")
	}
	if IsReason(err, ReasonForbiddenKeyword) {
		t.Error("IsReason should not match a different reason")
	}
	if IsReason(nil, ReasonForbiddenModule) {
		t.Error("IsReason(nil) should be false")
	}
}
