package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/codeshift/pkg/safeio"
	"github.com/dshills/codeshift/pkg/security"
)

// FileStatus classifies the outcome for one file in a run.
type FileStatus string

const (
	StatusChanged   FileStatus = "changed"
	StatusUnchanged FileStatus = "unchanged"
	StatusSkipped   FileStatus = "skipped"
	StatusFailed    FileStatus = "failed"
)

// FileResult is the per-file outcome of a migration run.
type FileResult struct {
	Path   string     // Relative to the run root, forward slashes
	Status FileStatus
	Detail string // Skip/failure reason, empty otherwise
	Bytes  int    // Bytes written, zero unless the file was rewritten
}

// Report summarizes a migration run.
type Report struct {
	MigrationType string
	Root          string
	DryRun        bool
	Scanned       int
	Changed       int
	Skipped       int
	Failed        int
	Files         []FileResult
}

// Options configures a Driver.
type Options struct {
	// DryRun previews changes without writing anything.
	DryRun bool
	// Filter is an optional file filter expression (see FileFilter).
	Filter string
	// Logger receives structured run logs. Defaults to a no-op logger.
	Logger *zap.Logger
	// Limiter throttles file operations. Defaults to the standard
	// multi-limiter.
	Limiter *security.MultiRateLimiter
}

// Driver walks a guard-validated file tree and applies a migrator to
// every candidate file through the safe I/O layer. The driver holds no
// per-run mutable state; one driver can serve many runs.
type Driver struct {
	guard    *security.PathGuard
	registry *Registry
	filter   *FileFilter
	limiter  *security.MultiRateLimiter
	logger   *zap.Logger
	dryRun   bool
}

// NewDriver creates a driver rooted at baseDir. Every path the driver
// touches is validated against baseDir.
func NewDriver(baseDir string, registry *Registry, opts Options) (*Driver, error) {
	guard, err := security.NewPathGuard(baseDir)
	if err != nil {
		return nil, err
	}

	filter, err := NewFileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = security.NewMultiRateLimiter()
	}

	return &Driver{
		guard:    guard,
		registry: registry,
		filter:   filter,
		limiter:  limiter,
		logger:   logger,
		dryRun:   opts.DryRun,
	}, nil
}

// Run applies the named migration to every candidate file under root
// (a path relative to the driver's base directory, or "." for the base
// itself). The migration type is checked against the allowlist before
// anything is walked.
func (d *Driver) Run(ctx context.Context, migrationType, root string) (*Report, error) {
	if err := security.ValidateMigrationType(migrationType); err != nil {
		return nil, err
	}

	migrator, err := d.registry.Get(migrationType)
	if err != nil {
		return nil, err
	}

	if !d.limiter.Allow(security.OpMigration, migrationType) {
		return nil, fmt.Errorf("migration rate limit exceeded for %s, retry after %s",
			migrationType, d.limiter.RetryAfter(security.OpMigration, migrationType))
	}

	rootPath, err := d.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	if migrationType == "react-hooks" && !ProjectUsesReact(rootPath) {
		d.logger.Warn("no react dependency found in package.json",
			zap.String("root", rootPath))
	}

	report := &Report{
		MigrationType: migrationType,
		Root:          rootPath,
		DryRun:        d.dryRun,
	}

	candidates, err := d.collect(ctx, migrator, rootPath, report)
	if err != nil {
		return nil, err
	}

	for _, rel := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.migrateOne(migrator, rel, report)
	}

	d.logger.Info("migration run complete",
		zap.String("migration", migrationType),
		zap.Bool("dry_run", d.dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("changed", report.Changed),
		zap.Int("failed", report.Failed))

	return report, nil
}

// Analyze produces a plan for every candidate file without rewriting.
// Migrators that do not implement Analyzer contribute no steps.
func (d *Driver) Analyze(ctx context.Context, migrationType, root string) (map[string]*Plan, error) {
	if err := security.ValidateMigrationType(migrationType); err != nil {
		return nil, err
	}

	migrator, err := d.registry.Get(migrationType)
	if err != nil {
		return nil, err
	}
	analyzer, ok := migrator.(Analyzer)
	if !ok {
		return nil, fmt.Errorf("migration type %s does not support analysis", migrationType)
	}

	if !d.limiter.Allow(security.OpAnalysis, migrationType) {
		return nil, fmt.Errorf("analysis rate limit exceeded for %s, retry after %s",
			migrationType, d.limiter.RetryAfter(security.OpAnalysis, migrationType))
	}

	rootPath, err := d.resolveRoot(root)
	if err != nil {
		return nil, err
	}

	report := &Report{MigrationType: migrationType, Root: rootPath}
	candidates, err := d.collect(ctx, migrator, rootPath, report)
	if err != nil {
		return nil, err
	}

	plans := make(map[string]*Plan)
	for _, rel := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := safeio.ReadFile(rel, d.guard.Base())
		if err != nil {
			d.logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(err))
			continue
		}
		if plan := analyzer.Analyze(content, rel); plan.HasWork() {
			plans[rel] = plan
		}
	}
	return plans, nil
}

// resolveRoot validates the run root against the base directory. "." and
// "" select the base directory itself.
func (d *Driver) resolveRoot(root string) (string, error) {
	if root == "" || root == "." {
		return d.guard.Base(), nil
	}
	return d.guard.SanitizeDirectory(root)
}

// collect walks rootPath and returns the relative paths of candidate
// files, recording skips on the report. Backup directories and hidden
// directories are never descended into.
func (d *Driver) collect(ctx context.Context, migrator Migrator, rootPath string, report *Report) ([]string, error) {
	var candidates []string

	err := filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		name := entry.Name()
		if entry.IsDir() {
			if path != rootPath && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !migrator.CanMigrate(path) {
			return nil
		}

		report.Scanned++
		rel := d.guard.RelativePath(path)

		info, err := entry.Info()
		if err != nil {
			report.Failed++
			report.Files = append(report.Files, FileResult{Path: rel, Status: StatusFailed, Detail: err.Error()})
			return nil
		}

		matched, err := d.filter.Match(rel, info.Size())
		if err != nil {
			return err
		}
		if !matched {
			report.Skipped++
			report.Files = append(report.Files, FileResult{Path: rel, Status: StatusSkipped, Detail: "filter"})
			return nil
		}

		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rootPath, err)
	}

	return candidates, nil
}

// migrateOne reads, transforms, and (outside dry-run) rewrites a single
// file, recording the outcome. Per-file failures never abort the run.
func (d *Driver) migrateOne(migrator Migrator, rel string, report *Report) {
	if !d.limiter.Allow(security.OpFileOps, migrator.Name()) {
		wait := d.limiter.RetryAfter(security.OpFileOps, migrator.Name())
		report.Skipped++
		report.Files = append(report.Files, FileResult{
			Path:   rel,
			Status: StatusSkipped,
			Detail: fmt.Sprintf("rate limited, retry after %s", wait),
		})
		return
	}

	content, err := safeio.ReadFile(rel, d.guard.Base())
	if err != nil {
		d.recordFailure(report, migrator.Name(), rel, "reading file", err)
		return
	}

	rewritten, err := migrator.Migrate(content, rel)
	if err != nil {
		d.recordFailure(report, migrator.Name(), rel, "applying migration", err)
		return
	}

	if rewritten == content {
		report.Files = append(report.Files, FileResult{Path: rel, Status: StatusUnchanged})
		return
	}

	if d.dryRun {
		report.Changed++
		report.Files = append(report.Files, FileResult{Path: rel, Status: StatusChanged, Detail: "dry run"})
		return
	}

	if err := safeio.WriteFile(rel, rewritten, d.guard.Base()); err != nil {
		d.recordFailure(report, migrator.Name(), rel, "writing file", err)
		return
	}

	d.logger.Info("migrated file", zap.String("path", rel))
	report.Changed++
	report.Files = append(report.Files, FileResult{Path: rel, Status: StatusChanged, Bytes: len(rewritten)})
}

func (d *Driver) recordFailure(report *Report, migration, rel, operation string, cause error) {
	opErr := NewOperationalError(operation, migration, rel, cause)
	d.logger.Error("file migration failed", zap.String("path", rel), zap.Error(opErr))
	report.Failed++
	report.Files = append(report.Files, FileResult{Path: rel, Status: StatusFailed, Detail: opErr.Error()})
}
