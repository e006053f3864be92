package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biotrack/biotrack-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func fptr(f float64) *float64 { return &f }

func sampleResult(userID, metricID string, value *float64, day int) *model.TestResult {
	return &model.TestResult{
		UserID:   userID,
		MetricID: metricID,
		Value:    value,
		Status:   model.StatusNormal,
		TestDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLite_CreateAndListResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1 := sampleResult("user-1", "vitamin-d", fptr(45.2), 10)
	r2 := sampleResult("user-1", "glucose", fptr(92), 5)
	r3 := sampleResult("user-2", "glucose", fptr(88), 7)

	require.NoError(t, s.CreateTestResult(ctx, r1))
	require.NoError(t, s.CreateTestResult(ctx, r2))
	require.NoError(t, s.CreateTestResult(ctx, r3))
	assert.NotEmpty(t, r1.ID, "id assigned on insert")

	results, err := s.ListTestResults(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Ascending by test date: glucose (day 5) first.
	assert.Equal(t, "glucose", results[0].MetricID)
	assert.Equal(t, "vitamin-d", results[1].MetricID)
	require.NotNil(t, results[1].Value)
	assert.Equal(t, 45.2, *results[1].Value)
}

func TestSQLite_NullValueRoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleResult("user-1", "glucose", nil, 1)
	require.NoError(t, s.CreateTestResult(ctx, r))

	results, err := s.ListTestResults(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Value)
}

func TestSQLite_ListResultsByMetric(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTestResult(ctx, sampleResult("user-1", "vitamin-d", fptr(45.2), 10)))
	require.NoError(t, s.CreateTestResult(ctx, sampleResult("user-1", "vitamin-d", fptr(60), 20)))
	require.NoError(t, s.CreateTestResult(ctx, sampleResult("user-1", "glucose", fptr(92), 15)))

	history, err := s.ListTestResultsByMetric(ctx, "user-1", "vitamin-d")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 45.2, *history[0].Value)
	assert.Equal(t, 60.0, *history[1].Value)
}

func TestSQLite_DeleteResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleResult("user-1", "glucose", fptr(92), 1)
	require.NoError(t, s.CreateTestResult(ctx, r))
	require.NoError(t, s.DeleteTestResult(ctx, r.ID))

	results, err := s.ListTestResults(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, results)

	err = s.DeleteTestResult(ctx, "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_BulkInsertResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []model.TestResult{
		*sampleResult("user-1", "vitamin-d", fptr(45.2), 10),
		*sampleResult("user-1", "glucose", nil, 5),
		*sampleResult("user-2", "glucose", fptr(88), 7),
	}
	require.NoError(t, s.BulkInsertTestResults(ctx, batch))
	assert.NotEmpty(t, batch[0].ID, "ids assigned in place")

	results, err := s.ListTestResults(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Nil(t, results[0].Value)

	// An empty batch is a no-op.
	require.NoError(t, s.BulkInsertTestResults(ctx, nil))
}

func sampleReminder(userID, metricID string, dueDay int) *model.Reminder {
	return &model.Reminder{
		UserID:   userID,
		MetricID: metricID,
		DueDate:  time.Date(2024, 4, dueDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestSQLite_UpsertReminder_ReplacesPerMetric(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleReminder("user-1", "vitamin-d", 10)
	require.NoError(t, s.UpsertReminder(ctx, first))
	require.NoError(t, s.MarkReminderSent(ctx, first.ID, true))

	// A newer result for the same metric replaces the reminder and resets
	// its sent state.
	second := sampleReminder("user-1", "vitamin-d", 20)
	require.NoError(t, s.UpsertReminder(ctx, second))

	reminders, err := s.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, second.ID, reminders[0].ID)
	assert.Equal(t, 20, reminders[0].DueDate.Day())
	assert.False(t, reminders[0].Sent)
	assert.Nil(t, reminders[0].SentAt)
}

func TestSQLite_ListReminders_OrderedByDueDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertReminder(ctx, sampleReminder("user-1", "glucose", 25)))
	require.NoError(t, s.UpsertReminder(ctx, sampleReminder("user-1", "vitamin-d", 5)))
	require.NoError(t, s.UpsertReminder(ctx, sampleReminder("user-2", "glucose", 1)))

	reminders, err := s.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "vitamin-d", reminders[0].MetricID)
	assert.Equal(t, "glucose", reminders[1].MetricID)
}

func TestSQLite_MarkReminderSent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleReminder("user-1", "vitamin-d", 10)
	require.NoError(t, s.UpsertReminder(ctx, r))
	require.NoError(t, s.MarkReminderSent(ctx, r.ID, true))

	reminders, err := s.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].Sent)
	require.NotNil(t, reminders[0].SentAt)

	// Unmarking clears the timestamp again.
	require.NoError(t, s.MarkReminderSent(ctx, r.ID, false))
	reminders, err = s.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, reminders[0].Sent)
	assert.Nil(t, reminders[0].SentAt)

	err = s.MarkReminderSent(ctx, "missing", true)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_DeleteReminder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := sampleReminder("user-1", "vitamin-d", 10)
	require.NoError(t, s.UpsertReminder(ctx, r))
	require.NoError(t, s.DeleteReminder(ctx, r.ID))

	reminders, err := s.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, reminders)

	err = s.DeleteReminder(ctx, r.ID)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func newJob(id, userID string, status model.JobState) *model.GenerationJob {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.GenerationJob{
		ID: id, UserID: userID, Language: "en", Status: status,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestSQLite_JobLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newJob("job-1", "user-1", model.JobStatePending)
	require.NoError(t, s.CreateGenerationJob(ctx, job))

	got, err := s.GetGenerationJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatePending, got.Status)
	assert.Empty(t, got.PlanData)
	assert.Empty(t, got.Error)

	got.Status = model.JobStateCompleted
	got.PlanData = []byte(`{"summary":"ok"}`)
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.UpdateGenerationJob(ctx, got))

	got, err = s.GetGenerationJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCompleted, got.Status)
	assert.JSONEq(t, `{"summary":"ok"}`, string(got.PlanData))
}

func TestSQLite_GetGenerationJob_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetGenerationJob(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_UpdateGenerationJob_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateGenerationJob(context.Background(), newJob("missing", "user-1", model.JobStateFailed))
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_GetLatestPendingJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No jobs: nil, not an error.
	job, err := s.GetLatestPendingJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, job)

	// Terminal jobs don't count as active.
	require.NoError(t, s.CreateGenerationJob(ctx, newJob("done", "user-1", model.JobStateCompleted)))
	job, err = s.GetLatestPendingJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, job)

	// Processing does.
	require.NoError(t, s.CreateGenerationJob(ctx, newJob("active", "user-1", model.JobStateProcessing)))
	job, err = s.GetLatestPendingJob(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "active", job.ID)

	// Other users are invisible.
	job, err = s.GetLatestPendingJob(ctx, "user-2")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestSQLite_TrackedJobSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	jobID, err := s.GetTrackedJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "", jobID)

	require.NoError(t, s.SetTrackedJob(ctx, "user-1", "job-1"))
	jobID, err = s.GetTrackedJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)

	// Overwrite.
	require.NoError(t, s.SetTrackedJob(ctx, "user-1", "job-2"))
	jobID, err = s.GetTrackedJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "job-2", jobID)

	// Clearing is idempotent.
	require.NoError(t, s.ClearTrackedJob(ctx, "user-1"))
	require.NoError(t, s.ClearTrackedJob(ctx, "user-1"))
	jobID, err = s.GetTrackedJob(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "", jobID)
}

func TestJobSlot_AdaptsStoreForOneUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	slot := NewJobSlot(s, "user-1")
	require.NoError(t, slot.Store(ctx, "job-9"))

	jobID, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-9", jobID)

	// Other users see their own slots only.
	other := NewJobSlot(s, "user-2")
	jobID, err = other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", jobID)

	require.NoError(t, slot.Clear(ctx))
	jobID, err = slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", jobID)
}
