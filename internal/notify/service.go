// Package notify is the local notification service. Registrations live in
// the store's notification registry so every process sees the same set and
// they survive restarts.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/reminder"
)

// Registry is the subset of the store the notification service needs.
type Registry interface {
	UpsertNotification(ctx context.Context, n model.Notification) error
	RemoveNotification(ctx context.Context, id string) (bool, error)
	PendingNotifications(ctx context.Context) ([]model.Notification, error)
	DueNotifications(ctx context.Context, now time.Time) ([]model.Notification, error)
	MarkNotificationDelivered(ctx context.Context, id string, fireAt time.Time) error
	NotificationAuthorization(ctx context.Context) (granted bool, decided bool, err error)
	SetNotificationAuthorization(ctx context.Context, granted bool) error
}

// PromptFunc asks the user whether notifications may be shown.
type PromptFunc func(ctx context.Context) (bool, error)

// Service implements reminder.Notifier on top of a Registry.
type Service struct {
	registry Registry
	prompt   PromptFunc
	clock    reminder.Clock
}

var _ reminder.Notifier = (*Service)(nil)

// NewService creates a Service. A nil prompt treats the request itself as
// consent; a nil clock uses the wall clock.
func NewService(r Registry, prompt PromptFunc, clock reminder.Clock) *Service {
	if prompt == nil {
		prompt = func(context.Context) (bool, error) { return true, nil }
	}
	if clock == nil {
		clock = reminder.RealClock{}
	}
	return &Service{registry: r, prompt: prompt, clock: clock}
}

// RequestAuthorization prompts once and persists the answer. Later calls
// return the stored decision without prompting again.
func (s *Service) RequestAuthorization(ctx context.Context) (bool, error) {
	granted, decided, err := s.registry.NotificationAuthorization(ctx)
	if err != nil {
		return false, err
	}
	if decided {
		return granted, nil
	}

	granted, err = s.prompt(ctx)
	if err != nil {
		return false, fmt.Errorf("prompting for notification permission: %w", err)
	}
	if err := s.registry.SetNotificationAuthorization(ctx, granted); err != nil {
		return false, err
	}
	return granted, nil
}

// CheckAuthorization returns the stored decision. An undecided user counts
// as not granted.
func (s *Service) CheckAuthorization(ctx context.Context) (bool, error) {
	granted, _, err := s.registry.NotificationAuthorization(ctx)
	return granted, err
}

// SetAuthorization overrides the stored decision.
func (s *Service) SetAuthorization(ctx context.Context, granted bool) error {
	return s.registry.SetNotificationAuthorization(ctx, granted)
}

// Schedule registers req, replacing any registration with the same ID.
func (s *Service) Schedule(ctx context.Context, req reminder.Request) error {
	return s.registry.UpsertNotification(ctx, model.Notification{
		ID:        req.ID,
		TaskID:    req.TaskID,
		Title:     req.Title,
		Body:      req.Body,
		FireAt:    req.FireAt,
		CreatedAt: s.clock.Now(),
	})
}

// Cancel removes the registration with the given ID.
func (s *Service) Cancel(ctx context.Context, id string) error {
	_, err := s.registry.RemoveNotification(ctx, id)
	return err
}

// Pending lists undelivered registrations ordered by fire time.
func (s *Service) Pending(ctx context.Context) ([]model.Notification, error) {
	return s.registry.PendingNotifications(ctx)
}
