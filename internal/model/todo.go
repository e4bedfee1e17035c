package model

import "time"

// Todo status constants.
const (
	TodoStatusOpen       = "open"
	TodoStatusInProgress = "in_progress"
	TodoStatusComplete   = "complete"
)

// Todo is a local task item created and managed by the user.
type Todo struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Category    string     `json:"category" db:"category"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Reminder holds the task's notification state.
	Reminder Reminder `json:"reminder"`
}

// Reminder is the logical intent to be notified about a todo.
//
// When Enabled is true, At is set and NotificationID is either the
// handle of a notification scheduled for At or empty if scheduling
// failed. When Enabled is false, NotificationID is empty.
type Reminder struct {
	Enabled bool       `json:"enabled" db:"reminder_enabled"`
	At      *time.Time `json:"at,omitempty" db:"reminder_at"`

	// Relative reminders follow the due date when it changes.
	Relative bool `json:"relative" db:"reminder_relative"`

	NotificationID string `json:"notification_id,omitempty" db:"notification_id"`
}

// IsOverdue reports whether the todo is past its due date and not done.
func (t Todo) IsOverdue(now time.Time) bool {
	return t.Status != TodoStatusComplete && t.DueDate != nil && t.DueDate.Before(now)
}
