package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Run("valid profile", func(t *testing.T) {
		path := writeProfile(t, `{
			"type": "python3",
			"root": "src",
			"filter": "size < 100000",
			"dry_run": true
		}`)

		profile, err := LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "python3", profile.Type)
		assert.Equal(t, "src", profile.Root)
		assert.Equal(t, "size < 100000", profile.Filter)
		assert.True(t, profile.DryRun)
	})

	t.Run("minimal profile", func(t *testing.T) {
		path := writeProfile(t, `{"type": "react-hooks", "root": "."}`)

		profile, err := LoadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "react-hooks", profile.Type)
		assert.Empty(t, profile.Filter)
		assert.False(t, profile.DryRun)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeProfile(t, `{"type": "python3",`)
		_, err := LoadProfile(path)
		assert.Error(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		path := writeProfile(t, `{"type": "python3"}`)
		_, err := LoadProfile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile")
	})

	t.Run("unknown field rejected by schema", func(t *testing.T) {
		path := writeProfile(t, `{"type": "python3", "root": ".", "shell": "rm -rf /"}`)
		_, err := LoadProfile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile")
	})

	t.Run("wrong field type rejected by schema", func(t *testing.T) {
		path := writeProfile(t, `{"type": "python3", "root": ".", "dry_run": "yes"}`)
		_, err := LoadProfile(path)
		assert.Error(t, err)
	})

	t.Run("unknown migration type", func(t *testing.T) {
		path := writeProfile(t, `{"type": "fortran-modernize", "root": "."}`)
		_, err := LoadProfile(path)
		assert.Error(t, err)
	})

	t.Run("hostile root path", func(t *testing.T) {
		path := writeProfile(t, `{"type": "python3", "root": "../../etc"}`)
		_, err := LoadProfile(path)
		assert.Error(t, err)
	})
}

func TestConfigInitAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.True(t, cfg.AuditLog)

	// Init is idempotent and the file survives a second Load.
	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err)

	cfg2, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}

func TestConfigDirPriority(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/dir")
	SetDir("/flag/dir")
	defer SetDir("")

	assert.Equal(t, "/env/dir", Dir(), "environment variable wins over SetDir")

	t.Setenv(EnvConfigDir, "")
	assert.Equal(t, "/flag/dir", Dir())
}

func TestConfigPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	assert.Equal(t, filepath.Join(dir, "codeshift.db"), HistoryDBPath())
	assert.Equal(t, filepath.Join(dir, "logs"), AuditLogDir())
}
