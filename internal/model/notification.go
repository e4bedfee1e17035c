package model

import "time"

// ScheduledNotification is a notification waiting in the local
// platform's queue.
type ScheduledNotification struct {
	// ID is the handle returned to the scheduler.
	ID string `json:"id" db:"id"`

	// ChannelID is empty when channels are disabled.
	ChannelID string `json:"channel_id" db:"channel_id"`

	Title string `json:"title" db:"title"`
	Body  string `json:"body" db:"body"`

	// Data is the JSON-encoded payload map.
	Data string `json:"data" db:"data"`

	Sound bool `json:"sound" db:"sound"`

	// FireAt is when the notification becomes due.
	FireAt time.Time `json:"fire_at" db:"fire_at"`

	// Immediate marks notifications scheduled without a fire time.
	Immediate bool `json:"immediate" db:"immediate"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationChannel is a delivery channel as declared to the local
// platform.
type NotificationChannel struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Importance  string `json:"importance" db:"importance"`
	Sound       bool   `json:"sound" db:"sound"`

	// VibrationMS is a comma-separated list of millisecond durations.
	VibrationMS string    `json:"vibration_ms" db:"vibration_ms"`
	LightColor  string    `json:"light_color" db:"light_color"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
