package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/biotrack/biotrack-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS test_results (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	value      REAL,
	status     TEXT NOT NULL DEFAULT 'normal',
	test_date  DATETIME NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS generation_jobs (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	language   TEXT NOT NULL DEFAULT 'en',
	status     TEXT NOT NULL DEFAULT 'pending',
	plan_data  TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tracked_jobs (
	user_id    TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reminders (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	due_date   DATETIME NOT NULL,
	sent       INTEGER NOT NULL DEFAULT 0,
	sent_at    DATETIME,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(user_id, metric_id)
);

CREATE INDEX IF NOT EXISTS idx_test_results_user ON test_results(user_id);
CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
CREATE INDEX IF NOT EXISTS idx_test_results_user_metric ON test_results(user_id, metric_id);
CREATE INDEX IF NOT EXISTS idx_generation_jobs_user_status ON generation_jobs(user_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTestResult(ctx context.Context, r *model.TestResult) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_results (id, user_id, metric_id, value, status, test_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.MetricID, r.Value, string(r.Status), r.TestDate, r.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert result")
}

// BulkInsertTestResults inserts a batch of results in one transaction.
// Missing ids and creation times are assigned.
func (s *SQLiteStore) BulkInsertTestResults(ctx context.Context, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin bulk insert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO test_results (id, user_id, metric_id, value, status, test_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare bulk insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range results {
		r := &results[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.UserID, r.MetricID, r.Value, string(r.Status), r.TestDate, r.CreatedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: bulk insert %s", r.MetricID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit bulk insert")
}

func (s *SQLiteStore) ListTestResults(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, metric_id, value, status, test_date, created_at
		 FROM test_results WHERE user_id = ?
		 ORDER BY test_date ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *SQLiteStore) ListTestResultsByMetric(ctx context.Context, userID, metricID string) ([]model.TestResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, metric_id, value, status, test_date, created_at
		 FROM test_results WHERE user_id = ? AND metric_id = ?
		 ORDER BY test_date ASC, created_at ASC`,
		userID, metricID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list results for %s", metricID)
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *SQLiteStore) DeleteTestResult(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM test_results WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete result %s", id)
	}
	return checkRowsAffected(res, "result", id)
}

func (s *SQLiteStore) CreateGenerationJob(ctx context.Context, job *model.GenerationJob) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_jobs (id, user_id, language, status, plan_data, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.UserID, job.Language, string(job.Status),
		nullableBytes(job.PlanData), nullableString(job.Error), job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: insert job")
}

func (s *SQLiteStore) GetGenerationJob(ctx context.Context, id string) (*model.GenerationJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, language, status, plan_data, error, created_at, updated_at
		 FROM generation_jobs WHERE id = ?`,
		id,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get job %s", id)
	}
	return job, nil
}

func (s *SQLiteStore) UpdateGenerationJob(ctx context.Context, job *model.GenerationJob) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE generation_jobs SET status = ?, plan_data = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(job.Status), nullableBytes(job.PlanData), nullableString(job.Error), job.UpdatedAt, job.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job %s", job.ID)
	}
	return checkRowsAffected(res, "job", job.ID)
}

func (s *SQLiteStore) GetLatestPendingJob(ctx context.Context, userID string) (*model.GenerationJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, language, status, plan_data, error, created_at, updated_at
		 FROM generation_jobs
		 WHERE user_id = ? AND status IN ('pending', 'processing')
		 ORDER BY created_at DESC LIMIT 1`,
		userID,
	)
	job, err := scanJob(row)
	if eris.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get active job")
	}
	return job, nil
}

// UpsertReminder replaces the user's reminder for the metric, if any. A
// fresh test result restarts the recheck clock with an unsent reminder.
func (s *SQLiteStore) UpsertReminder(ctx context.Context, r *model.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert reminder")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reminders WHERE user_id = ? AND metric_id = ?`,
		r.UserID, r.MetricID,
	); err != nil {
		return eris.Wrapf(err, "sqlite: replace reminder for %s", r.MetricID)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, metric_id, due_date, sent, sent_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.MetricID, r.DueDate, r.Sent, r.SentAt, r.CreatedAt,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert reminder for %s", r.MetricID)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit upsert reminder")
}

func (s *SQLiteStore) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, metric_id, due_date, sent, sent_at, created_at
		 FROM reminders WHERE user_id = ?
		 ORDER BY due_date ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reminders")
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		var sentAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.UserID, &r.MetricID, &r.DueDate, &r.Sent, &sentAt, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reminder")
		}
		if sentAt.Valid {
			t := sentAt.Time
			r.SentAt = &t
		}
		reminders = append(reminders, r)
	}
	return reminders, eris.Wrap(rows.Err(), "sqlite: iterate reminders")
}

func (s *SQLiteStore) MarkReminderSent(ctx context.Context, id string, sent bool) error {
	var sentAt any
	if sent {
		sentAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET sent = ?, sent_at = ? WHERE id = ?`,
		sent, sentAt, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark reminder %s", id)
	}
	return checkRowsAffected(res, "reminder", id)
}

func (s *SQLiteStore) DeleteReminder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete reminder %s", id)
	}
	return checkRowsAffected(res, "reminder", id)
}

func (s *SQLiteStore) GetTrackedJob(ctx context.Context, userID string) (string, error) {
	var jobID string
	err := s.db.QueryRowContext(ctx,
		`SELECT job_id FROM tracked_jobs WHERE user_id = ?`, userID,
	).Scan(&jobID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "sqlite: get tracked job")
	}
	return jobID, nil
}

func (s *SQLiteStore) SetTrackedJob(ctx context.Context, userID, jobID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracked_jobs (user_id, job_id, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET job_id = excluded.job_id, updated_at = excluded.updated_at`,
		userID, jobID, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: set tracked job")
}

func (s *SQLiteStore) ClearTrackedJob(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tracked_jobs WHERE user_id = ?`, userID)
	return eris.Wrap(err, "sqlite: clear tracked job")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResult(row scannable) (*model.TestResult, error) {
	var r model.TestResult
	var value sql.NullFloat64
	var status string

	err := row.Scan(&r.ID, &r.UserID, &r.MetricID, &value, &status, &r.TestDate, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan result")
	}
	if value.Valid {
		v := value.Float64
		r.Value = &v
	}
	r.Status = model.MetricStatus(status)
	return &r, nil
}

func scanResults(rows *sql.Rows) ([]model.TestResult, error) {
	var results []model.TestResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate results")
}

func scanJob(row scannable) (*model.GenerationJob, error) {
	var job model.GenerationJob
	var status string
	var planData, errMsg sql.NullString

	err := row.Scan(&job.ID, &job.UserID, &job.Language, &status, &planData, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan job")
	}
	job.Status = model.JobState(status)
	if planData.Valid {
		job.PlanData = []byte(planData.String)
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}
