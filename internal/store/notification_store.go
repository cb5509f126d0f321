package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/taskdock/internal/model"
)

const authorizationKey = "notifications.authorized"

func (s *SQLiteStore) checkRegistry() error {
	if !s.caps.NotificationRegistry {
		return fmt.Errorf("notification registry: %w", ErrUnsupported)
	}
	return nil
}

// UpsertNotification registers n, replacing any existing row with the same
// ID. The primary key guarantees one registration per ID.
func (s *SQLiteStore) UpsertNotification(ctx context.Context, n model.Notification) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkRegistry(); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notifications (id, task_id, title, body, fire_at, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, n.Title, n.Body, n.FireAt.UTC(),
		boolToInt(n.Delivered), n.CreatedAt.UTC(),
	)
	if err != nil {
		return persistErr(fmt.Sprintf("registering notification %s", n.ID), err)
	}
	return nil
}

// RemoveNotification deletes a registration whether pending or delivered.
func (s *SQLiteStore) RemoveNotification(ctx context.Context, id string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}
	if err := s.checkRegistry(); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return false, persistErr(fmt.Sprintf("removing notification %s", id), err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetNotification retrieves a registration by ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (model.Notification, bool, error) {
	if err := s.checkRegistry(); err != nil {
		return model.Notification{}, false, err
	}

	row := s.db.QueryRowxContext(ctx, "SELECT * FROM notifications WHERE id = ?", id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Notification{}, false, nil
	}
	if err != nil {
		return model.Notification{}, false, persistErr(fmt.Sprintf("getting notification %s", id), err)
	}
	return n, true, nil
}

// PendingNotifications returns undelivered registrations ordered by fire
// time.
func (s *SQLiteStore) PendingNotifications(ctx context.Context) ([]model.Notification, error) {
	return s.queryNotifications(ctx,
		"SELECT * FROM notifications WHERE delivered = 0 ORDER BY fire_at, id")
}

// DueNotifications returns undelivered registrations whose fire time is at
// or before now.
func (s *SQLiteStore) DueNotifications(ctx context.Context, now time.Time) ([]model.Notification, error) {
	return s.queryNotifications(ctx,
		"SELECT * FROM notifications WHERE delivered = 0 AND fire_at <= ? ORDER BY fire_at, id",
		now.UTC())
}

func (s *SQLiteStore) queryNotifications(ctx context.Context, query string, args ...interface{}) ([]model.Notification, error) {
	if err := s.checkRegistry(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("querying notifications", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, persistErr("scanning notification row", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterating notifications", err)
	}
	return notifications, nil
}

// MarkNotificationDelivered flags a registration as delivered. The update
// only applies while the registration still has the given fire time, so a
// registration replaced since it was read stays pending.
func (s *SQLiteStore) MarkNotificationDelivered(ctx context.Context, id string, fireAt time.Time) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkRegistry(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET delivered = 1 WHERE id = ? AND fire_at = ?", id, fireAt.UTC(),
	)
	if err != nil {
		return persistErr(fmt.Sprintf("marking notification %s as delivered", id), err)
	}
	return nil
}

// NotificationAuthorization returns the stored permission decision. decided
// is false when the user has never been asked.
func (s *SQLiteStore) NotificationAuthorization(ctx context.Context) (granted bool, decided bool, err error) {
	if err := s.checkRegistry(); err != nil {
		return false, false, err
	}

	var value string
	err = s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", authorizationKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, persistErr("reading notification authorization", err)
	}
	return value == "granted", true, nil
}

// SetNotificationAuthorization records the user's permission decision.
func (s *SQLiteStore) SetNotificationAuthorization(ctx context.Context, granted bool) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkRegistry(); err != nil {
		return err
	}

	value := "denied"
	if granted {
		value = "granted"
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		authorizationKey, value,
	)
	if err != nil {
		return persistErr("writing notification authorization", err)
	}
	return nil
}

// scanNotification scans a notification row.
func scanNotification(row interface{ Scan(dest ...interface{}) error }) (model.Notification, error) {
	var (
		n         model.Notification
		delivered int
		fireAt    time.Time
		createdAt time.Time
	)

	err := row.Scan(
		&n.ID, &n.TaskID, &n.Title, &n.Body,
		&fireAt, &delivered, &createdAt,
	)
	if err != nil {
		return model.Notification{}, err
	}

	n.FireAt = fireAt.UTC()
	n.CreatedAt = createdAt.UTC()
	n.Delivered = delivered != 0
	return n, nil
}
