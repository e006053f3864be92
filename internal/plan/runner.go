package plan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/model"
)

// defaultProcessingTimeout bounds how long a job may sit in processing
// before a status read fails it.
const defaultProcessingTimeout = 5 * time.Minute

// timeoutError is the failure message stamped on jobs that exceed the
// processing timeout.
const timeoutError = "generation timed out"

// JobStore is the persistence surface the runner needs.
type JobStore interface {
	CreateGenerationJob(ctx context.Context, job *model.GenerationJob) error
	GetGenerationJob(ctx context.Context, id string) (*model.GenerationJob, error)
	UpdateGenerationJob(ctx context.Context, job *model.GenerationJob) error
	GetLatestPendingJob(ctx context.Context, userID string) (*model.GenerationJob, error)
	ListTestResults(ctx context.Context, userID string) ([]model.TestResult, error)
}

// Runner owns the server-side lifecycle of plan-generation jobs: it creates
// the job row, runs generation in the background, and answers status polls.
type Runner struct {
	store   JobStore
	gen     *Generator
	timeout time.Duration
}

// NewRunner creates a Runner. A zero timeout uses the 5-minute default.
func NewRunner(store JobStore, gen *Generator, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultProcessingTimeout
	}
	return &Runner{store: store, gen: gen, timeout: timeout}
}

// Start submits a generation job for the profile's user and returns its id.
// At most one job per user is in flight: if a pending or processing job
// already exists, its id is returned and no new work starts.
func (r *Runner) Start(ctx context.Context, profile model.Profile, language string) (string, error) {
	existing, err := r.store.GetLatestPendingJob(ctx, profile.UserID)
	if err != nil {
		return "", eris.Wrap(err, "plan: check active job")
	}
	if existing != nil {
		zap.L().Info("reusing active generation job",
			zap.String("job_id", existing.ID),
			zap.String("user_id", profile.UserID))
		return existing.ID, nil
	}

	now := time.Now().UTC()
	job := &model.GenerationJob{
		ID:        uuid.NewString(),
		UserID:    profile.UserID,
		Language:  language,
		Status:    model.JobStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.CreateGenerationJob(ctx, job); err != nil {
		return "", eris.Wrap(err, "plan: create job")
	}

	// The job outlives the submitting request, so generation runs on a
	// fresh context bounded only by the processing timeout.
	go r.run(job.ID, profile, language)

	zap.L().Info("generation job started",
		zap.String("job_id", job.ID),
		zap.String("user_id", profile.UserID),
		zap.String("language", language))
	return job.ID, nil
}

func (r *Runner) run(jobID string, profile model.Profile, language string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	log := zap.L().With(zap.String("job_id", jobID))

	job, err := r.store.GetGenerationJob(ctx, jobID)
	if err != nil {
		log.Error("load job for processing", zap.Error(err))
		return
	}

	job.Status = model.JobStateProcessing
	job.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateGenerationJob(ctx, job); err != nil {
		log.Error("mark job processing", zap.Error(err))
		return
	}

	results, err := r.store.ListTestResults(ctx, profile.UserID)
	if err != nil {
		r.fail(ctx, job, eris.Wrap(err, "plan: load results"))
		return
	}

	plan, err := r.gen.Generate(ctx, profile, results, language)
	if err != nil {
		r.fail(ctx, job, err)
		return
	}

	data, err := json.Marshal(plan)
	if err != nil {
		r.fail(ctx, job, eris.Wrap(err, "plan: encode plan"))
		return
	}

	job.Status = model.JobStateCompleted
	job.PlanData = data
	job.Error = ""
	job.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateGenerationJob(ctx, job); err != nil {
		log.Error("mark job completed", zap.Error(err))
		return
	}
	log.Info("generation job completed")
}

func (r *Runner) fail(ctx context.Context, job *model.GenerationJob, cause error) {
	zap.L().Warn("generation job failed",
		zap.String("job_id", job.ID),
		zap.Error(cause))

	job.Status = model.JobStateFailed
	job.Error = cause.Error()
	job.UpdatedAt = time.Now().UTC()
	if err := r.store.UpdateGenerationJob(ctx, job); err != nil {
		zap.L().Error("mark job failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// Status reports a job's current state. Jobs stuck in processing past the
// timeout are failed on read, so a crashed worker cannot strand pollers.
func (r *Runner) Status(ctx context.Context, jobID string) (*model.JobStatus, error) {
	job, err := r.store.GetGenerationJob(ctx, jobID)
	if err != nil {
		return nil, eris.Wrapf(err, "plan: load job %s", jobID)
	}

	if job.Status == model.JobStateProcessing && time.Since(job.UpdatedAt) > r.timeout {
		job.Status = model.JobStateFailed
		job.Error = timeoutError
		job.UpdatedAt = time.Now().UTC()
		if err := r.store.UpdateGenerationJob(ctx, job); err != nil {
			return nil, eris.Wrapf(err, "plan: expire job %s", jobID)
		}
	}

	return &model.JobStatus{
		Status: job.Status,
		Plan:   job.PlanData,
		Error:  job.Error,
	}, nil
}
