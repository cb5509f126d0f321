package model

import "time"

// Notification is a local notification registration held by the
// notification registry. At most one row exists per ID.
type Notification struct {
	// ID is derived from the owning task so replace/cancel is idempotent.
	ID string `json:"id"`

	// TaskID links this notification to the task it reminds about.
	TaskID string `json:"task_id"`

	Title string `json:"title"`
	Body  string `json:"body"`

	// FireAt is the absolute delivery time.
	FireAt time.Time `json:"fire_at"`

	// Delivered is set once the dispatcher has presented the notification.
	Delivered bool `json:"delivered"`

	CreatedAt time.Time `json:"created_at"`
}

// Capabilities describes which optional schema features the opened store
// supports. It is computed once when the store is opened.
type Capabilities struct {
	SchemaVersion int `json:"schema_version"`

	// Reminders is true when tasks carry reminder_type and
	// custom_reminder_offset columns.
	Reminders bool `json:"reminders"`

	// NotificationRegistry is true when the notification and settings
	// tables exist.
	NotificationRegistry bool `json:"notification_registry"`
}

// CapabilitiesForVersion derives capabilities from a schema version.
func CapabilitiesForVersion(version int) Capabilities {
	return Capabilities{
		SchemaVersion:        version,
		Reminders:            version >= 2,
		NotificationRegistry: version >= 3,
	}
}
