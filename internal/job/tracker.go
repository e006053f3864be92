// Package job tracks one in-flight plan-generation job per user, polling
// its status until it lands and notifying exactly once.
package job

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/internal/notify"
)

// defaultPollInterval is the cadence status polls run at.
const defaultPollInterval = 3 * time.Second

// Slot is a durable single-value store for the tracked job id. It survives
// process restarts so an in-flight job can be resumed.
type Slot interface {
	Load(ctx context.Context) (string, error)
	Store(ctx context.Context, jobID string) error
	Clear(ctx context.Context) error
}

// StatusFetcher reports the current status of a generation job.
type StatusFetcher interface {
	Status(ctx context.Context, jobID string) (*model.JobStatus, error)
}

// Tracker owns the client-side lifecycle of the single tracked job. All
// methods are safe for concurrent use; overlapping or stale ticks are
// no-ops.
type Tracker struct {
	slot     Slot
	fetcher  StatusFetcher
	notifier notify.Notifier
	interval time.Duration

	mu       sync.Mutex
	jobID    string
	state    model.JobState
	plan     json.RawMessage
	errMsg   string
	notified bool
}

// NewTracker creates a Tracker. A non-positive interval uses the 3-second
// default.
func NewTracker(slot Slot, fetcher StatusFetcher, notifier notify.Notifier, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Tracker{
		slot:     slot,
		fetcher:  fetcher,
		notifier: notifier,
		interval: interval,
	}
}

// Submit starts tracking a new job, overwriting whatever was tracked
// before. Any retained plan from a previous job is dropped.
func (t *Tracker) Submit(ctx context.Context, jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.slot.Store(ctx, jobID); err != nil {
		return eris.Wrap(err, "job: persist tracked job")
	}

	t.jobID = jobID
	t.state = model.JobStatePending
	t.plan = nil
	t.errMsg = ""
	t.notified = false

	zap.L().Info("tracking generation job", zap.String("job_id", jobID))
	return nil
}

// Resume picks up the job persisted in the slot, if any. Returns whether
// there is a job to poll.
func (t *Tracker) Resume(ctx context.Context) (bool, error) {
	jobID, err := t.slot.Load(ctx)
	if err != nil {
		return false, eris.Wrap(err, "job: load tracked job")
	}
	if jobID == "" {
		return false, nil
	}

	t.mu.Lock()
	t.jobID = jobID
	t.state = model.JobStatePending
	t.plan = nil
	t.errMsg = ""
	t.notified = false
	t.mu.Unlock()

	zap.L().Info("resuming tracked job", zap.String("job_id", jobID))
	return true, nil
}

// Tick performs one poll transition and reports whether polling is done.
// A fetch error keeps the current state and keeps polling. A completed
// status only lands when it carries the plan payload.
func (t *Tracker) Tick(ctx context.Context) bool {
	t.mu.Lock()
	jobID := t.jobID
	if jobID == "" || t.state.Terminal() {
		t.mu.Unlock()
		return true
	}
	t.mu.Unlock()

	status, err := t.fetcher.Status(ctx, jobID)
	if err != nil {
		zap.L().Debug("job poll failed, retrying",
			zap.String("job_id", jobID),
			zap.Error(err))
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// The tracked job may have been swapped or finished while the fetch
	// was in flight.
	if t.jobID != jobID || t.state.Terminal() {
		return true
	}

	switch {
	case status.Status == model.JobStateCompleted && len(status.Plan) > 0:
		t.state = model.JobStateCompleted
		t.plan = status.Plan
		t.clearSlot(ctx)
		t.notifyOnce(notify.EventPlanReady)
		return true

	case status.Status == model.JobStateFailed:
		t.state = model.JobStateFailed
		t.errMsg = status.Error
		t.clearSlot(ctx)
		if strings.Contains(status.Error, "timed out") {
			t.notifyOnce(notify.EventPlanTimedOut)
		} else {
			t.notifyOnce(notify.EventPlanFailed)
		}
		return true

	default:
		t.state = status.Status
		return false
	}
}

// Run polls until the tracked job lands or the context ends. Returns
// immediately when nothing is tracked.
func (t *Tracker) Run(ctx context.Context) error {
	t.mu.Lock()
	active := t.jobID != "" && !t.state.Terminal()
	t.mu.Unlock()
	if !active {
		return nil
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.Tick(ctx) {
				return nil
			}
		}
	}
}

// ClearCompleted drops the retained plan payload after the caller has
// consumed it.
func (t *Tracker) ClearCompleted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plan = nil
}

// ActiveJob returns the tracked job id, or empty when none is tracked.
func (t *Tracker) ActiveJob() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return ""
	}
	return t.jobID
}

// State returns the last observed job state.
func (t *Tracker) State() model.JobState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Plan returns the retained plan payload of a completed job, or nil.
func (t *Tracker) Plan() json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plan
}

// Err returns the failure message of a failed job, or empty.
func (t *Tracker) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

func (t *Tracker) clearSlot(ctx context.Context) {
	if err := t.slot.Clear(ctx); err != nil {
		zap.L().Warn("clear tracked job slot", zap.Error(err))
	}
}

func (t *Tracker) notifyOnce(event notify.Event) {
	if t.notified {
		return
	}
	t.notified = true
	if t.notifier != nil {
		t.notifier.Notify(event)
	}
}
