package model

import (
	"encoding/json"
	"time"
)

// JobState represents the lifecycle state of a plan-generation job.
type JobState string

const (
	JobStatePending    JobState = "pending"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether no further transition can occur for this state.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// GenerationJob is a persisted plan-generation task. At most one
// pending/processing job exists per user at a time.
type GenerationJob struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Language  string          `json:"language"`
	Status    JobState        `json:"status"`
	PlanData  json.RawMessage `json:"plan_data,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobStatus is the payload returned by the status collaborator for a
// tracked job id.
type JobStatus struct {
	Status JobState        `json:"status"`
	Plan   json.RawMessage `json:"plan,omitempty"`
	Error  string          `json:"error,omitempty"`
}
