package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/task-reminders/internal/model"
)

const notificationColumns = `id, channel_id, title, body, data, sound, fire_at, immediate, created_at`

// InsertNotification queues a scheduled notification.
func (s *SQLiteStore) InsertNotification(
	ctx context.Context,
	n model.ScheduledNotification,
) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.ChannelID, n.Title, n.Body, n.Data, boolToInt(n.Sound),
		n.FireAt.UTC(), boolToInt(n.Immediate), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting notification %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNotification removes a queued notification.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM scheduled_notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllNotifications empties the queue.
func (s *SQLiteStore) DeleteAllNotifications(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM scheduled_notifications"); err != nil {
		return fmt.Errorf("deleting all notifications: %w", err)
	}
	return nil
}

// GetNotifications returns every queued notification ordered by fire time.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
) ([]model.ScheduledNotification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+notificationColumns+" FROM scheduled_notifications ORDER BY fire_at, created_at")
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// TakeDueNotifications removes and returns every notification due at or
// before now, in fire order.
func (s *SQLiteStore) TakeDueNotifications(
	ctx context.Context,
	now time.Time,
) ([]model.ScheduledNotification, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx,
		"SELECT "+notificationColumns+" FROM scheduled_notifications WHERE fire_at <= ? ORDER BY fire_at, created_at",
		now.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying due notifications: %w", err)
	}
	due, err := scanNotifications(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	for _, n := range due {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM scheduled_notifications WHERE id = ?", n.ID); err != nil {
			return nil, fmt.Errorf("removing fired notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing due notifications: %w", err)
	}
	return due, nil
}

// UpsertChannel inserts or replaces a channel declaration.
func (s *SQLiteStore) UpsertChannel(
	ctx context.Context,
	ch model.NotificationChannel,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notification_channels (
			id, name, description, importance, sound, vibration_ms, light_color, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.Description, ch.Importance, boolToInt(ch.Sound),
		ch.VibrationMS, ch.LightColor, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting channel %s: %w", ch.ID, err)
	}
	return nil
}

// GetChannels returns every declared channel ordered by ID.
func (s *SQLiteStore) GetChannels(
	ctx context.Context,
) ([]model.NotificationChannel, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, name, description, importance, sound, vibration_ms, light_color, updated_at
		FROM notification_channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []model.NotificationChannel
	for rows.Next() {
		var (
			ch    model.NotificationChannel
			sound int
		)
		if err := rows.Scan(
			&ch.ID, &ch.Name, &ch.Description, &ch.Importance, &sound,
			&ch.VibrationMS, &ch.LightColor, &ch.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning channel row: %w", err)
		}
		ch.Sound = sound != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// GetSetting returns the value stored under key, or ErrNotFound.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores value under key.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func scanNotifications(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]model.ScheduledNotification, error) {
	var out []model.ScheduledNotification
	for rows.Next() {
		var (
			n         model.ScheduledNotification
			sound     int
			immediate int
		)
		if err := rows.Scan(
			&n.ID, &n.ChannelID, &n.Title, &n.Body, &n.Data, &sound,
			&n.FireAt, &immediate, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Sound = sound != 0
		n.Immediate = immediate != 0
		out = append(out, n)
	}
	return out, rows.Err()
}
