package model

import "time"

// Reminder schedules a re-test for one metric. Each stored result with a
// recheck interval replaces the user's reminder for that metric, so at most
// one reminder per (user, metric) exists.
type Reminder struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	MetricID  string     `json:"metric_id"`
	DueDate   time.Time  `json:"due_date"`
	Sent      bool       `json:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Due reports whether the reminder should fire: past its due date and not
// yet acknowledged.
func (r Reminder) Due(now time.Time) bool {
	return !r.Sent && !now.Before(r.DueDate)
}
