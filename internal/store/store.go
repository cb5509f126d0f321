package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
)

// Error kinds surfaced by the store. Missing records are reported as a
// false/empty result rather than an error.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPersistence      = errors.New("persistence failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrReadOnly         = errors.New("store opened read-only")
	ErrUnsupported      = errors.New("not supported by store schema")
)

// persistErr wraps a driver error as ErrPersistence.
func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// TaskSort is an allow-listed task sort key.
type TaskSort string

const (
	SortDueDate      TaskSort = "due_date"
	SortDateCreated  TaskSort = "date_created"
	SortDateModified TaskSort = "date_modified"
	SortTitle        TaskSort = "title"
	SortPriority     TaskSort = "priority"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
// Nil fields do not filter. The chainable methods return modified copies.
type TaskFilter struct {
	Completed     *bool
	Priority      *model.Priority
	CategoryID    *string
	Uncategorized bool
	HasDueDate    *bool
	DueFrom       *time.Time // inclusive
	DueBefore     *time.Time // exclusive
	Query         *string    // search title + description
	SortBy        TaskSort
	SortDesc      bool
	Limit         int
	Offset        int
}

// Incomplete restricts the filter to tasks that are not completed.
func (f TaskFilter) Incomplete() TaskFilter {
	f.Completed = Ptr(false)
	return f
}

// CompletedOnly restricts the filter to completed tasks.
func (f TaskFilter) CompletedOnly() TaskFilter {
	f.Completed = Ptr(true)
	return f
}

// WithPriority restricts the filter to a single priority.
func (f TaskFilter) WithPriority(p model.Priority) TaskFilter {
	f.Priority = &p
	return f
}

// InCategory restricts the filter to one category.
func (f TaskFilter) InCategory(id string) TaskFilter {
	f.CategoryID = &id
	f.Uncategorized = false
	return f
}

// DueWithin restricts the filter to due dates in [from, before).
func (f TaskFilter) DueWithin(from, before time.Time) TaskFilter {
	f.DueFrom = &from
	f.DueBefore = &before
	return f
}

// SortedBy sets the sort key and direction.
func (f TaskFilter) SortedBy(key TaskSort, desc bool) TaskFilter {
	f.SortBy = key
	f.SortDesc = desc
	return f
}

// Take caps the number of results.
func (f TaskFilter) Take(n int) TaskFilter {
	f.Limit = n
	return f
}

// CategoryFilter controls category queries.
type CategoryFilter struct {
	Query    *string
	SortBy   string // "name" or "date_created"
	SortDesc bool
	Limit    int
}

// Ptr returns a pointer to v. Handy for filter and update literals.
func Ptr[T any](v T) *T {
	return &v
}

// Reminders is the reminder reconciliation hook the store calls after task
// mutations commit.
type Reminders interface {
	// Reschedule brings the task's registration in line with its current
	// state, cancelling it when no reminder applies.
	Reschedule(ctx context.Context, task model.Task) error
	Cancel(ctx context.Context, taskID string) error
}

// CategoryPolicy decides what AddTask does with a category id that does not
// resolve.
type CategoryPolicy int

const (
	// CategoryLeaveUnset stores the task without a category and logs it.
	CategoryLeaveUnset CategoryPolicy = iota
	// CategoryReject fails the write with ErrValidation.
	CategoryReject
)

// CategoryPolicyFor maps the store.strict_categories setting to a policy.
func CategoryPolicyFor(strict bool) CategoryPolicy {
	if strict {
		return CategoryReject
	}
	return CategoryLeaveUnset
}

// Store defines the persistence interface for tasks, categories, notes and
// the local notification registry.
type Store interface {
	Capabilities() model.Capabilities
	Bus() *bus.Bus
	Close() error

	// === Tasks ===

	AddTask(ctx context.Context, fields model.TaskFields) (string, error)
	UpdateTask(ctx context.Context, id string, update model.TaskUpdate) (bool, error)
	ToggleTaskCompletion(ctx context.Context, id string) (bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
	GetTask(ctx context.Context, id string) (model.Task, bool, error)
	QueryTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)

	// === Categories ===

	AddCategory(ctx context.Context, name, colorHex string) (string, error)
	UpdateCategory(ctx context.Context, id string, update model.CategoryUpdate) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
	GetCategory(ctx context.Context, id string) (model.Category, bool, error)
	QueryCategories(ctx context.Context, filter CategoryFilter) ([]model.Category, error)

	DeleteRecord(ctx context.Context, kind model.EntityKind, id string) (bool, error)

	// === Batch ===

	DeleteAllCompleted(ctx context.Context) (int, error)
	DeleteAllData(ctx context.Context) (int, error)

	// === Notes ===

	AddNote(ctx context.Context, content string) (string, error)
	UpdateNote(ctx context.Context, id, content string) (bool, error)
	DeleteNote(ctx context.Context, id string) (bool, error)
	ListNotes(ctx context.Context, limit int) ([]model.Note, error)

	// === Notification registry ===

	UpsertNotification(ctx context.Context, n model.Notification) error
	RemoveNotification(ctx context.Context, id string) (bool, error)
	GetNotification(ctx context.Context, id string) (model.Notification, bool, error)
	PendingNotifications(ctx context.Context) ([]model.Notification, error)
	DueNotifications(ctx context.Context, now time.Time) ([]model.Notification, error)
	MarkNotificationDelivered(ctx context.Context, id string, fireAt time.Time) error
	NotificationAuthorization(ctx context.Context) (granted bool, decided bool, err error)
	SetNotificationAuthorization(ctx context.Context, granted bool) error
}

var _ Store = (*SQLiteStore)(nil)
