package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func newTestGuard(t *testing.T) (*PathGuard, string) {
	t.Helper()
	base := t.TempDir()
	guard, err := NewPathGuard(base)
	if err != nil {
		t.Fatalf("NewPathGuard(%s): %v", base, err)
	}
	return guard, base
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewPathGuard(t *testing.T) {
	t.Run("valid base directory", func(t *testing.T) {
		base := t.TempDir()
		guard, err := NewPathGuard(base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if guard.Base() == "" {
			t.Error("expected non-empty resolved base")
		}
	})

	t.Run("empty base", func(t *testing.T) {
		if _, err := NewPathGuard(""); err == nil {
			t.Error("expected error for empty base path")
		}
	})

	t.Run("relative base", func(t *testing.T) {
		if _, err := NewPathGuard("relative/path"); err == nil {
			t.Error("expected error for relative base path")
		}
	})

	t.Run("nonexistent base", func(t *testing.T) {
		if _, err := NewPathGuard(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for nonexistent base path")
		}
	})

	t.Run("base is a file", func(t *testing.T) {
		base := t.TempDir()
		file := writeTestFile(t, base, "plain.txt", "x")
		if _, err := NewPathGuard(file); err == nil {
			t.Error("expected error for file base path")
		}
	})

	t.Run("symlinked base resolves", func(t *testing.T) {
		base := t.TempDir()
		target := filepath.Join(base, "target")
		link := filepath.Join(base, "link")
		if err := os.Mkdir(target, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, link); err != nil {
			if runtime.GOOS == "windows" {
				t.Skip("symlink creation requires elevated privileges on Windows")
			}
			t.Fatal(err)
		}
		guard, err := NewPathGuard(link)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resolvedTarget, err := filepath.EvalSymlinks(target)
		if err != nil {
			t.Fatal(err)
		}
		if guard.Base() != resolvedTarget {
			t.Errorf("Base() = %s, want %s", guard.Base(), resolvedTarget)
		}
	})
}

func TestPathGuardSanitize_Rejections(t *testing.T) {
	guard, base := newTestGuard(t)
	writeTestFile(t, base, "app.py", "print('hi')")

	tests := []struct {
		name   string
		path   string
		reason Reason
	}{
		{"empty path", "", ReasonInvalidLength},
		{"path at length bound", strings.Repeat("a", MaxPathLength-3) + ".py", ReasonInvalidLength},
		{"parent traversal", "../etc/passwd.txt", ReasonDangerousPattern},
		{"embedded traversal", "src/../../etc/passwd.txt", ReasonDangerousPattern},
		{"home shortcut", "~/secrets.txt", ReasonDangerousPattern},
		{"shell variable", "$HOME/x.py", ReasonDangerousPattern},
		{"command substitution", "`whoami`.py", ReasonDangerousPattern},
		{"pipe", "a|b.py", ReasonDangerousPattern},
		{"semicolon", "a;rm.py", ReasonDangerousPattern},
		{"ampersand", "a&b.py", ReasonDangerousPattern},
		{"absolute path", "/etc/passwd.txt", ReasonDangerousPattern},
		{"windows drive", `C:\Windows\system32.txt`, ReasonDangerousPattern},
		{"unc path", `\\server\share\x.txt`, ReasonDangerousPattern},
		{"null byte", "app\x00.py", ReasonControlCharacter},
		{"newline", "app\n.py", ReasonControlCharacter},
		{"denied extension", "payload.exe", ReasonExtensionDenied},
		{"no extension", "Makefile", ReasonExtensionDenied},
		{"nonexistent file", "missing.py", ReasonResolutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guard.Sanitize(tt.path)
			if err == nil {
				t.Fatalf("Sanitize(%q): expected error", tt.path)
			}
			if got := ReasonOf(err); got != tt.reason {
				t.Errorf("Sanitize(%q) reason = %s, want %s", tt.path, got, tt.reason)
			}
		})
	}
}

func TestPathGuardSanitize_Accepts(t *testing.T) {
	guard, base := newTestGuard(t)

	tests := []string{
		"app.py",
		"src/index.js",
		"src/components/App.jsx",
		"styles/main.SCSS", // extension check is case-insensitive
		"README.md",
		"config.yaml",
	}

	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			writeTestFile(t, base, filepath.FromSlash(path), "content")
			resolved, err := guard.Sanitize(path)
			if err != nil {
				t.Fatalf("Sanitize(%q): %v", path, err)
			}
			if !filepath.IsAbs(resolved) {
				t.Errorf("Sanitize(%q) = %q, want absolute path", path, resolved)
			}
			if rel := guard.RelativePath(resolved); rel != path {
				t.Errorf("RelativePath(%q) = %q, want %q", resolved, rel, path)
			}
		})
	}
}

func TestPathGuardSanitize_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on Windows")
	}

	outside := t.TempDir()
	secret := writeTestFile(t, outside, "secret.txt", "secret")

	guard, base := newTestGuard(t)
	if err := os.Symlink(secret, filepath.Join(base, "sneaky.txt")); err != nil {
		t.Fatal(err)
	}

	_, err := guard.Sanitize("sneaky.txt")
	if err == nil {
		t.Fatal("expected symlink escaping the base to be rejected")
	}
	if got := ReasonOf(err); got != ReasonOutsideBase {
		t.Errorf("reason = %s, want %s", got, ReasonOutsideBase)
	}
}

func TestPathGuardSanitize_SymlinkInsideBase(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on Windows")
	}

	guard, base := newTestGuard(t)
	target := writeTestFile(t, base, "real.py", "x = 1")
	if err := os.Symlink(target, filepath.Join(base, "alias.py")); err != nil {
		t.Fatal(err)
	}

	resolved, err := guard.Sanitize("alias.py")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolvedTarget, err := filepath.EvalSymlinks(target)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != resolvedTarget {
		t.Errorf("Sanitize(alias.py) = %s, want %s", resolved, resolvedTarget)
	}
}

func TestPathGuardSanitizeDirectory(t *testing.T) {
	guard, base := newTestGuard(t)
	if err := os.MkdirAll(filepath.Join(base, "src", "lib"), 0755); err != nil {
		t.Fatal(err)
	}

	// No extension requirement for directories.
	if _, err := guard.SanitizeDirectory("src/lib"); err != nil {
		t.Errorf("SanitizeDirectory(src/lib): %v", err)
	}

	// Traversal rules still apply.
	if _, err := guard.SanitizeDirectory("../elsewhere"); err == nil {
		t.Error("expected traversal rejection")
	}
}

func TestPathGuardStats(t *testing.T) {
	guard, base := newTestGuard(t)
	writeTestFile(t, base, "ok.py", "x = 1")

	_, _ = guard.Sanitize("ok.py")
	_, _ = guard.Sanitize("../bad.py")
	_, _ = guard.Sanitize("missing.py")

	validations, rejections := guard.Stats()
	if validations != 3 {
		t.Errorf("validations = %d, want 3", validations)
	}
	if rejections != 2 {
		t.Errorf("rejections = %d, want 2", rejections)
	}
}

func TestIsSafeFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"main.py", true},
		{"App.jsx", true},
		{"data-v2.json", true},
		{"", false},
		{"dir/file.py", false},
		{`dir\file.py`, false},
		{" padded.py", false},
		{"padded.py ", false},
		{"trailing.", false},
		{"CON", false},
		{"con.txt", false},
		{"PRN.py", false},
		{"aux", false},
		{"COM1", false},
		{"lpt9.md", false},
		{"NUL.txt", true}, // NUL is deliberately not on the reserved list
		{"console.py", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSafeFilename(tt.name); got != tt.want {
				t.Errorf("IsSafeFilename(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRelativePathFallback(t *testing.T) {
	guard, _ := newTestGuard(t)

	other := t.TempDir()
	outside := filepath.Join(other, "elsewhere", "file.py")
	if got := guard.RelativePath(outside); got != "file.py" {
		t.Errorf("RelativePath(%q) = %q, want file.py", outside, got)
	}
}
