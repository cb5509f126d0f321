// Package reminder derives local notification fire times from task state and
// keeps the notification service in line with every task mutation.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/model"
)

// DefaultGrace is how far ahead an already-due reminder is pushed so it
// still fires once.
const DefaultGrace = 30 * time.Second

const identifierPrefix = "task-reminder-"

// Identifier returns the notification ID for a task. The same task always
// maps to the same ID, which makes replace and cancel idempotent.
func Identifier(taskID string) string {
	return identifierPrefix + taskID
}

// Offset returns the signed distance from the due date for a reminder type.
// custom is the task's CustomReminderOffset in seconds.
func Offset(t model.ReminderType, custom int64) time.Duration {
	switch t {
	case model.ReminderFifteenBefore:
		return -15 * time.Minute
	case model.ReminderHourBefore:
		return -time.Hour
	case model.ReminderDayBefore:
		return -24 * time.Hour
	case model.ReminderCustom:
		return time.Duration(custom) * time.Second
	default:
		return 0
	}
}

// Options configures a Scheduler.
type Options struct {
	Clock        Clock
	Grace        time.Duration
	Capabilities model.Capabilities
}

// Scheduler registers at most one notification per task.
type Scheduler struct {
	notifier Notifier
	clock    Clock
	grace    time.Duration
	caps     model.Capabilities
}

// New creates a Scheduler. A zero Clock or Grace uses RealClock and
// DefaultGrace.
func New(n Notifier, opts Options) *Scheduler {
	s := &Scheduler{
		notifier: n,
		clock:    opts.Clock,
		grace:    opts.Grace,
		caps:     opts.Capabilities,
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.grace <= 0 {
		s.grace = DefaultGrace
	}
	return s
}

// FireTime returns when the task's reminder should fire. ok is false when
// the task has no applicable reminder. A fire time at or before now is
// clamped to now plus the grace period.
func (s *Scheduler) FireTime(task model.Task, now time.Time) (at time.Time, ok bool) {
	if !task.HasReminder() {
		return time.Time{}, false
	}
	at = task.DueDate.Add(Offset(task.ReminderType, task.CustomReminderOffset))
	if !at.After(now) {
		at = now.Add(s.grace)
	}
	return at, true
}

// Reschedule brings the task's registration in line with its current
// state. Any existing registration is removed first; a new one is added
// only when a reminder applies and notifications are permitted.
func (s *Scheduler) Reschedule(ctx context.Context, task model.Task) error {
	if !s.caps.Reminders {
		return nil
	}

	id := Identifier(task.ID)
	if err := s.notifier.Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancelling reminder for task %s: %w", task.ID, err)
	}

	at, ok := s.FireTime(task, s.clock.Now())
	if !ok {
		return nil
	}

	granted, err := s.notifier.CheckAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("checking notification permission: %w", err)
	}
	if !granted {
		log.Info().Str("task_id", task.ID).Msg("notification permission not granted, reminder skipped")
		return nil
	}

	req := Request{
		ID:     id,
		TaskID: task.ID,
		FireAt: at,
		Title:  task.Title,
		Body:   body(task),
	}
	if err := s.notifier.Schedule(ctx, req); err != nil {
		return fmt.Errorf("scheduling reminder for task %s: %w", task.ID, err)
	}

	log.Debug().Str("task_id", task.ID).Time("fire_at", at).Msg("reminder scheduled")
	return nil
}

// Cancel removes the task's registration, if any.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) error {
	if !s.caps.Reminders {
		return nil
	}
	if err := s.notifier.Cancel(ctx, Identifier(taskID)); err != nil {
		return fmt.Errorf("cancelling reminder for task %s: %w", taskID, err)
	}
	return nil
}

// RequestAuthorization asks the notification service for permission.
func (s *Scheduler) RequestAuthorization(ctx context.Context) (bool, error) {
	granted, err := s.notifier.RequestAuthorization(ctx)
	if err != nil {
		return false, fmt.Errorf("requesting notification permission: %w", err)
	}
	return granted, nil
}

func body(task model.Task) string {
	if task.Description != "" {
		return task.Description
	}
	return "Due " + task.DueDate.Local().Format("Mon Jan 2 15:04")
}
