package model

import "time"

// Priority is the user-assigned importance of a task.
type Priority string

// Priority constants. PriorityMedium is used when a value is unset or invalid.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a raw value to a known priority, falling back to
// PriorityMedium.
func ParsePriority(s string) Priority {
	switch p := Priority(s); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	default:
		return PriorityMedium
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return ParsePriority(string(p)) == p
}

// Rank orders priorities for sorting (higher is more important).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// ReminderType selects how a task's reminder is derived from its due date.
type ReminderType string

const (
	ReminderNone          ReminderType = "none"
	ReminderAtTime        ReminderType = "atTime"
	ReminderFifteenBefore ReminderType = "-15m"
	ReminderHourBefore    ReminderType = "-1h"
	ReminderDayBefore     ReminderType = "-1d"
	ReminderCustom        ReminderType = "custom"
)

// ParseReminderType maps a raw value to a known reminder type, falling back
// to ReminderNone.
func ParseReminderType(s string) ReminderType {
	switch r := ReminderType(s); r {
	case ReminderAtTime, ReminderFifteenBefore, ReminderHourBefore,
		ReminderDayBefore, ReminderCustom:
		return r
	default:
		return ReminderNone
	}
}

// Task is a single user todo item.
type Task struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	Priority    Priority   `json:"priority" db:"priority"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CategoryID  *string    `json:"category_id,omitempty" db:"category_id"`

	DateCreated  time.Time `json:"date_created" db:"date_created"`
	DateModified time.Time `json:"date_modified" db:"date_modified"`

	// ReminderType and CustomReminderOffset are only persisted when the
	// store's schema supports reminders (see Capabilities).
	ReminderType         ReminderType `json:"reminder_type" db:"reminder_type"`
	CustomReminderOffset int64        `json:"custom_reminder_offset" db:"custom_reminder_offset"`
}

// HasReminder reports whether the task should have a reminder registered.
func (t Task) HasReminder() bool {
	return !t.IsCompleted && t.DueDate != nil && t.ReminderType != ReminderNone && t.ReminderType != ""
}

// IsOverdue reports whether an incomplete task's due date has passed.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskFields are the caller-supplied values for a new task.
type TaskFields struct {
	Title                string
	Description          string
	DueDate              *time.Time
	Priority             Priority
	IsCompleted          bool
	CategoryID           *string
	ReminderType         ReminderType
	CustomReminderOffset int64
}

// TaskUpdate is a partial task update. Nil fields are left unchanged;
// RemoveDueDate and RemoveCategory explicitly clear the respective field.
type TaskUpdate struct {
	Title                *string
	Description          *string
	DueDate              *time.Time
	RemoveDueDate        bool
	Priority             *Priority
	IsCompleted          *bool
	CategoryID           *string
	RemoveCategory       bool
	ReminderType         *ReminderType
	CustomReminderOffset *int64
}

// TouchesReminder reports whether the update changes any field the
// reminder fire-time is derived from.
func (u TaskUpdate) TouchesReminder() bool {
	return u.DueDate != nil || u.RemoveDueDate || u.IsCompleted != nil ||
		u.ReminderType != nil || u.CustomReminderOffset != nil
}
