package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerWritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := New(dir)
	require.NoError(t, err)

	logger.MigrationEvent("python3", "/project", "run", "completed", zap.Int("changed", 3))
	logger.SecurityViolation("run", errors.New("dangerous pattern in path"))
	logger.FileWrite("src/app.py", 120)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `"event":"migration"`)
	assert.Contains(t, content, `"migration_type":"python3"`)
	assert.Contains(t, content, `"event":"security_violation"`)
	assert.Contains(t, content, "dangerous pattern in path")
	assert.Contains(t, content, `"event":"file_write"`)
	assert.Contains(t, content, `"bytes":120`)
}

func TestLoggerAppendsAcrossSessions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	first, err := New(dir)
	require.NoError(t, err)
	first.FileWrite("a.py", 1)
	require.NoError(t, first.Close())

	second, err := New(dir)
	require.NoError(t, err)
	second.FileWrite("b.py", 2)
	require.NoError(t, second.Close())

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.py")
	assert.Contains(t, string(data), "b.py")
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.MigrationEvent("python3", "/p", "run", "completed")
	logger.SecurityViolation("run", errors.New("x"))
	assert.NoError(t, logger.Close())
}
