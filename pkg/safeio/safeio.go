// Package safeio implements path-validated, crash-safe file reads and
// writes for the migration pipeline.
//
// Every operation validates its path through the security PathGuard
// before touching the filesystem. Writes are durable and reversible:
// the prior content is copied to a backup slot, the new content lands
// via a same-directory temp file and an atomic rename, and on any
// failure the original file is left untouched.
//
// Concurrent writers to the same file within one process are serialized
// by a per-canonical-path mutex. Cross-process callers needing per-file
// serialization must provide their own external locking.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/codeshift/pkg/security"
)

const (
	// BackupDirName is the conventional backup subdirectory created
	// next to any file that gets overwritten.
	BackupDirName = ".codeshift-backups"
	// BackupSuffix is appended to the original filename inside the
	// backup directory.
	BackupSuffix = ".bak"
)

// ErrNotFound reports a read of a path that validated but does not
// exist. It is an I/O failure, distinct from validation failures.
var ErrNotFound = errors.New("file not found")

// renameFile performs the atomic replace. A variable so tests can
// inject a failure between the temp write and the rename.
var renameFile = os.Rename

// pathLocks serializes in-process writers per canonical path.
var pathLocks sync.Map // string -> *sync.Mutex

// ReadFile validates path against baseDir and returns the full file
// content. Validation failures propagate unchanged; a missing file
// yields ErrNotFound.
func ReadFile(path, baseDir string) (string, error) {
	canonical, err := security.Sanitize(path, baseDir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile validates path against baseDir and replaces the file's
// content atomically, backing up the prior content first.
//
// Sequence: validate, back up the existing file to the backup slot,
// write the new content to a temp file in the target's directory, fsync,
// then atomically rename over the target. If anything fails after the
// temp file is created, the temp file is removed and the target keeps
// its prior content.
func WriteFile(path, content, baseDir string) error {
	canonical, err := security.Sanitize(path, baseDir)
	if err != nil {
		return err
	}

	mu := lockFor(canonical)
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(canonical); err == nil {
		if err := createBackup(canonical); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}

	return atomicWrite(canonical, []byte(content))
}

// Restore copies the most recent backup of path back over the target.
// Only the latest backup per filename survives, so this undoes exactly
// one write.
func Restore(path, baseDir string) error {
	canonical, err := security.Sanitize(path, baseDir)
	if err != nil {
		return err
	}

	mu := lockFor(canonical)
	mu.Lock()
	defer mu.Unlock()

	backupPath := backupSlot(canonical)
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: no backup for %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to read backup for %s: %w", path, err)
	}

	return atomicWrite(canonical, data)
}

// BackupPath returns the backup slot that WriteFile uses for the given
// canonical path. It does not check whether a backup exists.
func BackupPath(canonical string) string {
	return backupSlot(canonical)
}

// createBackup copies the current bytes of canonical into its backup
// slot, creating the backup directory if absent. A second backup of the
// same filename overwrites the first: only the most recent prior
// version survives.
func createBackup(canonical string) error {
	backupDir := filepath.Join(filepath.Dir(canonical), BackupDirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}

	if err := os.WriteFile(backupSlot(canonical), data, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// atomicWrite lands data at target via a same-directory temp file so the
// final rename never crosses filesystems. Readers see either the fully
// old or the fully new content, never a partial write.
func atomicWrite(target string, data []byte) error {
	dir := filepath.Dir(target)

	tmp, err := os.CreateTemp(dir, ".codeshift-write-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := renameFile(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

func backupSlot(canonical string) string {
	return filepath.Join(filepath.Dir(canonical), BackupDirName, filepath.Base(canonical)+BackupSuffix)
}

func lockFor(canonical string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(canonical, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
