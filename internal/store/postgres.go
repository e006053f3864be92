package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/biotrack/biotrack-cli/internal/db"
	"github.com/biotrack/biotrack-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"insert_result":   `INSERT INTO test_results (id, user_id, metric_id, value, status, test_date, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"list_results":    `SELECT id, user_id, metric_id, value, status, test_date, created_at FROM test_results WHERE user_id = $1 ORDER BY test_date ASC, created_at ASC`,
	"insert_job":      `INSERT INTO generation_jobs (id, user_id, language, status, plan_data, error, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_job":         `SELECT id, user_id, language, status, plan_data, error, created_at, updated_at FROM generation_jobs WHERE id = $1`,
	"update_job":      `UPDATE generation_jobs SET status = $1, plan_data = $2, error = $3, updated_at = $4 WHERE id = $5`,
	"get_tracked_job": `SELECT job_id FROM tracked_jobs WHERE user_id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g. bulk import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS test_results (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	value      DOUBLE PRECISION,
	status     TEXT NOT NULL DEFAULT 'normal',
	test_date  TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS generation_jobs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	language   TEXT NOT NULL DEFAULT 'en',
	status     TEXT NOT NULL DEFAULT 'pending',
	plan_data  JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tracked_jobs (
	user_id    TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reminders (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	metric_id  TEXT NOT NULL,
	due_date   TIMESTAMPTZ NOT NULL,
	sent       BOOLEAN NOT NULL DEFAULT false,
	sent_at    TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(user_id, metric_id)
);

CREATE INDEX IF NOT EXISTS idx_test_results_user ON test_results(user_id);
CREATE INDEX IF NOT EXISTS idx_test_results_user_metric ON test_results(user_id, metric_id);
CREATE INDEX IF NOT EXISTS idx_generation_jobs_user_status ON generation_jobs(user_id, status);
CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateTestResult(ctx context.Context, r *model.TestResult) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO test_results (id, user_id, metric_id, value, status, test_date, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, r.MetricID, r.Value, string(r.Status), r.TestDate, r.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert result")
}

// BulkInsertTestResults loads a batch of results with the COPY protocol in
// one round trip. Missing ids and creation times are assigned.
func (s *PostgresStore) BulkInsertTestResults(ctx context.Context, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(results))
	for i := range results {
		r := &results[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		rows[i] = []any{r.ID, r.UserID, r.MetricID, r.Value, string(r.Status), r.TestDate, r.CreatedAt}
	}

	n, err := db.CopyFrom(ctx, s.pool, "test_results",
		[]string{"id", "user_id", "metric_id", "value", "status", "test_date", "created_at"}, rows)
	if err != nil {
		return err
	}
	if n != int64(len(rows)) {
		return eris.Errorf("postgres: bulk insert wrote %d of %d rows", n, len(rows))
	}
	return nil
}

func (s *PostgresStore) ListTestResults(ctx context.Context, userID string) ([]model.TestResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, metric_id, value, status, test_date, created_at FROM test_results WHERE user_id = $1 ORDER BY test_date ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()
	return scanPgResults(rows)
}

func (s *PostgresStore) ListTestResultsByMetric(ctx context.Context, userID, metricID string) ([]model.TestResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, metric_id, value, status, test_date, created_at FROM test_results WHERE user_id = $1 AND metric_id = $2 ORDER BY test_date ASC, created_at ASC`,
		userID, metricID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list results for %s", metricID)
	}
	defer rows.Close()
	return scanPgResults(rows)
}

func (s *PostgresStore) DeleteTestResult(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM test_results WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete result %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "result %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateGenerationJob(ctx context.Context, job *model.GenerationJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO generation_jobs (id, user_id, language, status, plan_data, error, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.UserID, job.Language, string(job.Status),
		nullableBytes(job.PlanData), nullableString(job.Error), job.CreatedAt, job.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: insert job")
}

func (s *PostgresStore) GetGenerationJob(ctx context.Context, id string) (*model.GenerationJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, language, status, plan_data, error, created_at, updated_at FROM generation_jobs WHERE id = $1`,
		id,
	)
	job, err := scanPgJob(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", id)
	}
	return job, nil
}

func (s *PostgresStore) UpdateGenerationJob(ctx context.Context, job *model.GenerationJob) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE generation_jobs SET status = $1, plan_data = $2, error = $3, updated_at = $4 WHERE id = $5`,
		string(job.Status), nullableBytes(job.PlanData), nullableString(job.Error), job.UpdatedAt, job.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job %s", job.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "job %s", job.ID)
	}
	return nil
}

func (s *PostgresStore) GetLatestPendingJob(ctx context.Context, userID string) (*model.GenerationJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, language, status, plan_data, error, created_at, updated_at FROM generation_jobs WHERE user_id = $1 AND status IN ('pending', 'processing') ORDER BY created_at DESC LIMIT 1`,
		userID,
	)
	job, err := scanPgJob(row)
	if eris.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get active job")
	}
	return job, nil
}

// UpsertReminder replaces the user's reminder for the metric, if any. A
// fresh test result restarts the recheck clock with an unsent reminder.
func (s *PostgresStore) UpsertReminder(ctx context.Context, r *model.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM reminders WHERE user_id = $1 AND metric_id = $2`,
		r.UserID, r.MetricID,
	); err != nil {
		return eris.Wrapf(err, "postgres: replace reminder for %s", r.MetricID)
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reminders (id, user_id, metric_id, due_date, sent, sent_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, r.MetricID, r.DueDate, r.Sent, r.SentAt, r.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert reminder for %s", r.MetricID)
}

func (s *PostgresStore) ListReminders(ctx context.Context, userID string) ([]model.Reminder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, metric_id, due_date, sent, sent_at, created_at FROM reminders WHERE user_id = $1 ORDER BY due_date ASC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reminders")
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		var sentAt *time.Time
		if err := rows.Scan(&r.ID, &r.UserID, &r.MetricID, &r.DueDate, &r.Sent, &sentAt, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reminder")
		}
		r.SentAt = sentAt
		reminders = append(reminders, r)
	}
	return reminders, eris.Wrap(rows.Err(), "postgres: iterate reminders")
}

func (s *PostgresStore) MarkReminderSent(ctx context.Context, id string, sent bool) error {
	var sentAt *time.Time
	if sent {
		now := time.Now().UTC()
		sentAt = &now
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE reminders SET sent = $1, sent_at = $2 WHERE id = $3`,
		sent, sentAt, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark reminder %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "reminder %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteReminder(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete reminder %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "reminder %s", id)
	}
	return nil
}

func (s *PostgresStore) GetTrackedJob(ctx context.Context, userID string) (string, error) {
	var jobID string
	err := s.pool.QueryRow(ctx,
		`SELECT job_id FROM tracked_jobs WHERE user_id = $1`, userID,
	).Scan(&jobID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: get tracked job")
	}
	return jobID, nil
}

func (s *PostgresStore) SetTrackedJob(ctx context.Context, userID, jobID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tracked_jobs (user_id, job_id, updated_at) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO UPDATE SET job_id = EXCLUDED.job_id, updated_at = EXCLUDED.updated_at`,
		userID, jobID, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: set tracked job")
}

func (s *PostgresStore) ClearTrackedJob(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tracked_jobs WHERE user_id = $1`, userID)
	return eris.Wrap(err, "postgres: clear tracked job")
}

// scanning

func scanPgResults(rows pgx.Rows) ([]model.TestResult, error) {
	var results []model.TestResult
	for rows.Next() {
		var r model.TestResult
		var value *float64
		var status string
		if err := rows.Scan(&r.ID, &r.UserID, &r.MetricID, &value, &status, &r.TestDate, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		r.Value = value
		r.Status = model.MetricStatus(status)
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate results")
}

func scanPgJob(row pgx.Row) (*model.GenerationJob, error) {
	var job model.GenerationJob
	var status string
	var planData []byte
	var errMsg *string

	err := row.Scan(&job.ID, &job.UserID, &job.Language, &status, &planData, &errMsg, &job.CreatedAt, &job.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan job")
	}
	job.Status = model.JobState(status)
	job.PlanData = planData
	if errMsg != nil {
		job.Error = *errMsg
	}
	return &job, nil
}
