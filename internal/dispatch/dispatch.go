package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
	"github.com/campusforge/timetable-engine/pkg/jobs"
)

// Runner executes one blocking generation run.
type Runner interface {
	Run(ctx context.Context, snap *models.Snapshot) (*models.RunResult, error)
}

// Persister stores the entries of a finished run, replacing the previous
// timetable of every group in scope atomically.
type Persister interface {
	Replace(ctx context.Context, groupIDs []string, entries []models.TimetableEntry) error
}

// Config tunes the background worker pool.
type Config struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	RunTimeout time.Duration
}

// Dispatcher runs generation jobs in the background: Submit hands a
// snapshot to the worker pool and returns immediately, Status polls the
// job record. A run abort is terminal; only persistence failures are
// retried, and each retry recomputes the run.
type Dispatcher struct {
	runner     Runner
	store      JobStore
	persister  Persister
	queue      *jobs.Queue[*models.Snapshot]
	logger     *zap.Logger
	maxRetries int
	runTimeout time.Duration
}

// New builds a dispatcher. persister may be nil when results are only
// consumed through Status.
func New(runner Runner, store JobStore, persister Persister, log *zap.Logger, cfg Config) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	d := &Dispatcher{
		runner:     runner,
		store:      store,
		persister:  persister,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		runTimeout: cfg.RunTimeout,
	}
	d.queue = jobs.NewQueue("generation-runs", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     log,
	})
	return d
}

// Start boots the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop shuts the worker pool down, waiting for in-flight runs.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Submit registers a run job and queues it for a worker.
func (d *Dispatcher) Submit(ctx context.Context, snap *models.Snapshot) (*models.RunJob, error) {
	if snap == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "snapshot is required")
	}

	job := &models.RunJob{
		ID:        uuid.NewString(),
		Status:    models.RunJobStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.Put(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store run job")
	}
	if err := d.queue.Enqueue(jobs.Job[*models.Snapshot]{ID: job.ID, Payload: snap}); err != nil {
		d.markFailed(ctx, job, "failed to enqueue run job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to enqueue run job")
	}

	d.logger.Info("run job queued", zap.String("job_id", job.ID))
	return job, nil
}

// Status returns the current job record.
func (d *Dispatcher) Status(ctx context.Context, jobID string) (*models.RunJob, error) {
	return d.store.Get(ctx, jobID)
}

func (d *Dispatcher) handle(ctx context.Context, queued jobs.Job[*models.Snapshot]) error {
	job, err := d.store.Get(ctx, queued.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	job.Status = models.RunJobStatusProcessing
	job.StartedAt = &now
	job.ErrorMessage = nil
	if err := d.store.Put(ctx, job); err != nil {
		return err
	}

	runCtx := ctx
	if d.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.runTimeout)
		defer cancel()
	}

	result, err := d.runner.Run(runCtx, queued.Payload)
	if err != nil {
		// Aborts are deterministic; another attempt cannot change the outcome.
		d.markFailed(ctx, job, err.Error())
		return nil
	}

	if d.persister != nil && len(result.Entries) > 0 {
		if err := d.persister.Replace(ctx, groupIDs(queued.Payload), result.Entries); err != nil {
			if queued.Attempt >= d.maxRetries {
				d.markFailed(ctx, job, "failed to persist entries: "+err.Error())
				return err
			}
			msg := err.Error()
			job.Status = models.RunJobStatusQueued
			job.ErrorMessage = &msg
			if putErr := d.store.Put(ctx, job); putErr != nil {
				d.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(putErr))
			}
			return err
		}
	}

	finished := time.Now().UTC()
	job.Status = models.RunJobStatusFinished
	job.RunID = result.RunID
	job.Result = result
	job.ErrorMessage = nil
	job.FinishedAt = &finished
	if err := d.store.Put(ctx, job); err != nil {
		d.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}

	d.logger.Info("run job finished",
		zap.String("job_id", job.ID),
		zap.String("run_id", result.RunID),
		zap.Bool("success", result.Success))
	return nil
}

func (d *Dispatcher) markFailed(ctx context.Context, job *models.RunJob, msg string) {
	now := time.Now().UTC()
	job.Status = models.RunJobStatusFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &now
	if err := d.store.Put(ctx, job); err != nil {
		d.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

func groupIDs(snap *models.Snapshot) []string {
	ids := make([]string, 0, len(snap.Groups))
	for _, group := range snap.Groups {
		ids = append(ids, group.ID)
	}
	return ids
}
