package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codeshift/pkg/safeio"
	"github.com/dshills/codeshift/pkg/security"
)

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	for name, content := range files {
		path := filepath.Join(base, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return base
}

func TestDriverRun(t *testing.T) {
	base := setupProject(t, map[string]string{
		"legacy.py":            "for i in xrange(10):\n    total += i\n",
		"modern.py":            "for i in range(10):\n    total += i\n",
		"notes.md":             "not a python file",
		"sub/deep.py":          "if d.has_key(k):\n    pass\n",
		".hidden/h.py":         "xrange(1)\n",
		"node_modules/skip.py": "xrange(1)\n",
	})

	driver, err := NewDriver(base, DefaultRegistry(), Options{})
	require.NoError(t, err)

	report, err := driver.Run(context.Background(), "python3", ".")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Changed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.Scanned, "hidden and node_modules dirs are skipped, .md never scanned")

	content, err := safeio.ReadFile("legacy.py", base)
	require.NoError(t, err)
	assert.Contains(t, content, "range(10)")
	assert.NotContains(t, content, "xrange")

	content, err = safeio.ReadFile("sub/deep.py", base)
	require.NoError(t, err)
	assert.Contains(t, content, "k in d")

	// Backups exist for every rewritten file.
	_, err = os.Stat(filepath.Join(base, safeio.BackupDirName, "legacy.py"+safeio.BackupSuffix))
	assert.NoError(t, err)
}

func TestDriverRunDryRun(t *testing.T) {
	base := setupProject(t, map[string]string{
		"legacy.py": "xrange(10)\n",
	})

	driver, err := NewDriver(base, DefaultRegistry(), Options{DryRun: true})
	require.NoError(t, err)

	report, err := driver.Run(context.Background(), "python3", ".")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	content, err := safeio.ReadFile("legacy.py", base)
	require.NoError(t, err)
	assert.Equal(t, "xrange(10)\n", content, "dry run must not write")

	_, err = os.Stat(filepath.Join(base, safeio.BackupDirName))
	assert.True(t, os.IsNotExist(err), "dry run must not create backups")
}

func TestDriverRunWithFilter(t *testing.T) {
	base := setupProject(t, map[string]string{
		"keep.py":        "xrange(1)\n",
		"vendor/skip.py": "xrange(1)\n",
	})

	driver, err := NewDriver(base, DefaultRegistry(), Options{
		Filter: `!hasPrefix(path, "vendor/")`,
	})
	require.NoError(t, err)

	report, err := driver.Run(context.Background(), "python3", ".")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, 1, report.Skipped)

	content, err := safeio.ReadFile("vendor/skip.py", base)
	require.NoError(t, err)
	assert.Equal(t, "xrange(1)\n", content)
}

func TestDriverRunUnknownMigration(t *testing.T) {
	driver, err := NewDriver(t.TempDir(), DefaultRegistry(), Options{})
	require.NoError(t, err)

	_, err = driver.Run(context.Background(), "cobol-modernize", ".")
	require.Error(t, err)
	assert.Equal(t, security.ReasonUnknownMigration, security.ReasonOf(err))
}

func TestDriverRunAllowlistedButUnregistered(t *testing.T) {
	driver, err := NewDriver(t.TempDir(), DefaultRegistry(), Options{})
	require.NoError(t, err)

	// vue3 is on the security allowlist but has no migrator yet.
	_, err = driver.Run(context.Background(), "vue3", ".")
	assert.Error(t, err)
}

func TestDriverRunCancellation(t *testing.T) {
	base := setupProject(t, map[string]string{"a.py": "xrange(1)\n"})

	driver, err := NewDriver(base, DefaultRegistry(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = driver.Run(ctx, "python3", ".")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriverRunSubdirectoryRoot(t *testing.T) {
	base := setupProject(t, map[string]string{
		"src/app.py": "xrange(5)\n",
		"other.py":   "xrange(5)\n",
	})

	driver, err := NewDriver(base, DefaultRegistry(), Options{})
	require.NoError(t, err)

	report, err := driver.Run(context.Background(), "python3", "src")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	content, err := safeio.ReadFile("other.py", base)
	require.NoError(t, err)
	assert.Equal(t, "xrange(5)\n", content, "files outside the run root must be untouched")
}

func TestDriverRunRateLimited(t *testing.T) {
	base := setupProject(t, map[string]string{"a.py": "x = 1\n"})

	limiter := security.NewMultiRateLimiter()
	driver, err := NewDriver(base, DefaultRegistry(), Options{Limiter: limiter})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := driver.Run(context.Background(), "python3", ".")
		require.NoError(t, err)
	}

	_, err = driver.Run(context.Background(), "python3", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestDriverAnalyze(t *testing.T) {
	base := setupProject(t, map[string]string{
		"legacy.py": "for i in xrange(10):\n    pass\n",
		"modern.py": "for i in range(10):\n    pass\n",
	})

	driver, err := NewDriver(base, DefaultRegistry(), Options{})
	require.NoError(t, err)

	plans, err := driver.Analyze(context.Background(), "python3", ".")
	require.NoError(t, err)

	require.Len(t, plans, 1, "only files needing work appear in the plan map")
	require.Contains(t, plans, "legacy.py")
	assert.NotEmpty(t, plans["legacy.py"].Steps)

	// Analysis never writes.
	content, err := safeio.ReadFile("legacy.py", base)
	require.NoError(t, err)
	assert.Contains(t, content, "xrange")
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()

	names := registry.Names()
	assert.Contains(t, names, "python3")
	assert.Contains(t, names, "react-hooks")

	m, err := registry.Get("python3")
	require.NoError(t, err)
	assert.Equal(t, "python3", m.Name())

	_, err = registry.Get("vue3")
	assert.Error(t, err)
}

func TestOperationalError(t *testing.T) {
	cause := assert.AnError
	opErr := NewOperationalError("reading file", "python3", "src/app.py", cause)

	assert.Contains(t, opErr.Error(), "reading file")
	assert.Contains(t, opErr.Error(), "src/app.py")
	assert.ErrorIs(t, opErr, cause)
}
