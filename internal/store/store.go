// Package store persists test results, generation jobs, and the tracked-job
// slot, on SQLite for local use and Postgres for server deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/biotrack/biotrack-cli/internal/model"
)

// ErrNotFound marks lookups for rows that do not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for the interpretation pipeline.
type Store interface {
	// Test results (append-only)
	CreateTestResult(ctx context.Context, r *model.TestResult) error
	BulkInsertTestResults(ctx context.Context, results []model.TestResult) error
	ListTestResults(ctx context.Context, userID string) ([]model.TestResult, error)
	ListTestResultsByMetric(ctx context.Context, userID, metricID string) ([]model.TestResult, error)
	DeleteTestResult(ctx context.Context, id string) error

	// Generation jobs
	CreateGenerationJob(ctx context.Context, job *model.GenerationJob) error
	GetGenerationJob(ctx context.Context, id string) (*model.GenerationJob, error)
	UpdateGenerationJob(ctx context.Context, job *model.GenerationJob) error
	GetLatestPendingJob(ctx context.Context, userID string) (*model.GenerationJob, error)

	// Re-test reminders (one per user+metric)
	UpsertReminder(ctx context.Context, r *model.Reminder) error
	ListReminders(ctx context.Context, userID string) ([]model.Reminder, error)
	MarkReminderSent(ctx context.Context, id string, sent bool) error
	DeleteReminder(ctx context.Context, id string) error

	// Tracked-job slot (one per user)
	GetTrackedJob(ctx context.Context, userID string) (string, error)
	SetTrackedJob(ctx context.Context, userID, jobID string) error
	ClearTrackedJob(ctx context.Context, userID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
