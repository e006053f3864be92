package store

import "context"

// JobSlot adapts the per-user tracked-job row to the orchestrator's
// single-value slot.
type JobSlot struct {
	store  Store
	userID string
}

// NewJobSlot creates the slot view for one user.
func NewJobSlot(s Store, userID string) *JobSlot {
	return &JobSlot{store: s, userID: userID}
}

func (s *JobSlot) Load(ctx context.Context) (string, error) {
	return s.store.GetTrackedJob(ctx, s.userID)
}

func (s *JobSlot) Store(ctx context.Context, jobID string) error {
	return s.store.SetTrackedJob(ctx, s.userID, jobID)
}

func (s *JobSlot) Clear(ctx context.Context) error {
	return s.store.ClearTrackedJob(ctx, s.userID)
}
