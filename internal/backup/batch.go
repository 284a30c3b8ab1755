package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/thoreinstein/savekeep/internal/catalog"
	"github.com/thoreinstein/savekeep/internal/errors"
	"github.com/thoreinstein/savekeep/internal/locator"
	"github.com/thoreinstein/savekeep/internal/logging"
	"github.com/thoreinstein/savekeep/internal/manifest"
	"github.com/thoreinstein/savekeep/internal/paths"
	"github.com/thoreinstein/savekeep/internal/placeholder"
)

// Job is one application to back up or restore.
type Job struct {
	Name      string
	Resolver  Resolver
	Rules     []string
	Installed bool

	// Manifest is used by restore; when nil it is loaded from the archive.
	Manifest *manifest.Manifest
}

// Planner turns located applications into jobs.
type Planner struct {
	Family    placeholder.Family
	Host      paths.HostDirs
	Lookups   *placeholder.Lookups
	AccountID string
	Catalog   catalog.Catalog
}

// Resolver builds the resolver for one application.
func (p Planner) Resolver(app locator.Application) *placeholder.Resolver {
	ctx := placeholder.NewContext(p.Family,
		placeholder.WithInstallDir(app.InstallDir),
		placeholder.WithPrefix(app.Prefix),
		placeholder.WithAccountID(p.AccountID),
	)
	return placeholder.NewResolver(ctx, p.Host, p.Lookups)
}

// BackupJobs returns a job for every application the catalog knows.
func (p Planner) BackupJobs(apps []locator.Application) []Job {
	var jobs []Job
	for _, app := range locator.Known(apps, p.Catalog) {
		jobs = append(jobs, Job{
			Name:      app.Name,
			Resolver:  p.Resolver(app),
			Rules:     p.Catalog[app.Name].Rules(p.Family),
			Installed: true,
		})
	}
	return jobs
}

// RestoreJobs returns a job for every stored application with a usable
// manifest. Applications that are not installed get a job anyway so the
// batch reports them.
func (p Planner) RestoreJobs(stored []Stored, apps []locator.Application) []Job {
	var jobs []Job
	for _, s := range stored {
		if s.Err != nil {
			continue
		}
		app, err := locator.Find(apps, s.Name())
		installed := err == nil
		if !installed {
			app = locator.Application{Name: s.Name()}
		}
		jobs = append(jobs, Job{
			Name:      s.Name(),
			Resolver:  p.Resolver(app),
			Installed: installed,
			Manifest:  s.Manifest,
		})
	}
	return jobs
}

// Batch runs jobs one application at a time. A failing application never
// stops the batch; cancellation is honoured between applications.
type Batch struct {
	engine *Engine
	policy Policy
	newID  func() string
}

// NewBatch creates a Batch. An invalid policy falls back to PolicyAbort.
func NewBatch(engine *Engine, policy Policy) *Batch {
	if !policy.Valid() {
		policy = PolicyAbort
	}
	return &Batch{engine: engine, policy: policy, newID: uuid.NewString}
}

// Backup backs up every job.
func (b *Batch) Backup(ctx context.Context, jobs []Job) (*Report, error) {
	return b.run(ctx, OperationBackup, jobs, b.backupOne)
}

// Restore restores every job.
func (b *Batch) Restore(ctx context.Context, jobs []Job) (*Report, error) {
	return b.run(ctx, OperationRestore, jobs, b.restoreOne)
}

func (b *Batch) run(ctx context.Context, op Operation, jobs []Job, fn func(context.Context, Job) (bool, error)) (*Report, error) {
	report := &Report{RunID: b.newID(), Operation: op}
	logger := logging.FromContext(ctx).With(slog.String("run_id", report.RunID), slog.String("operation", string(op)))
	ctx = logging.NewContext(ctx, logger)

	logger.Info("batch started", "applications", len(jobs))

	var result *multierror.Error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		start := time.Now()
		changed, err := fn(ctx, job)
		res := Result{Application: job.Name, Changed: changed, Err: err, Duration: time.Since(start)}
		report.Results = append(report.Results, res)

		if err != nil {
			logger.Error("application failed", "application", job.Name, "error", err)
			result = multierror.Append(result, errors.Wrapf(err, "%s", job.Name))
			continue
		}
		logger.Info("application done", "application", job.Name, "changed", changed)
	}

	logger.Info("batch finished", "changed", report.Changed(), "failed", report.Failed())
	if err := result.ErrorOrNil(); err != nil {
		return report, errors.Mark(err, errors.ErrPartialFailure)
	}
	return report, nil
}

func (b *Batch) backupOne(ctx context.Context, job Job) (bool, error) {
	changed, err := b.engine.BackupApplication(ctx, job.Name, job.Resolver, job.Rules)
	if err == nil || !errors.Is(err, manifest.ErrMalformedManifest) || b.policy != PolicyRebuild {
		return changed, err
	}
	logging.FromContext(ctx).Warn("rebuilding malformed manifest", "application", job.Name, "error", err)
	return b.engine.Backup(ctx, job.Name, job.Resolver, job.Rules, nil)
}

func (b *Batch) restoreOne(ctx context.Context, job Job) (bool, error) {
	m := job.Manifest
	if m == nil {
		loaded, err := b.engine.Archive().LoadManifest(job.Name)
		if err != nil {
			return false, err
		}
		m = loaded
	}
	return b.engine.Restore(ctx, job.Name, job.Resolver, m, job.Installed)
}
