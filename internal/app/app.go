// Package app wires configuration, logging, the shared store, the reminder
// scheduler and the notification service together for a process.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/notify"
	"github.com/nhle/taskdock/internal/reminder"
	"github.com/nhle/taskdock/internal/store"
	"github.com/nhle/taskdock/internal/widget"
)

// App holds the components of one writable process.
type App struct {
	Config    *model.AppConfig
	Store     *store.SQLiteStore
	Scheduler *reminder.Scheduler
	Notifier  *notify.Service
}

// Options customises bootstrap. Zero values use the real clock and a
// notification prompt that treats the request as consent.
type Options struct {
	Clock  reminder.Clock
	Prompt notify.PromptFunc
}

// Open loads configuration from cfgPath, configures logging, opens the
// shared store (falling back to a local one) and installs the reminder
// scheduler.
func Open(cfgPath string, opts Options) (*App, error) {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	ConfigureLogging(cfg.Log.Level)
	return New(cfg, opts)
}

// New builds an App from an already loaded configuration.
func New(cfg *model.AppConfig, opts Options) (*App, error) {
	if opts.Clock == nil {
		opts.Clock = reminder.RealClock{}
	}

	s, err := store.Open(cfg.Store,
		store.WithCategoryPolicy(store.CategoryPolicyFor(cfg.Store.StrictCategories)),
		store.WithClock(opts.Clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &App{Config: cfg, Store: s}

	caps := s.Capabilities()
	if caps.NotificationRegistry {
		a.Notifier = notify.NewService(s, opts.Prompt, opts.Clock)
		a.Scheduler = reminder.New(a.Notifier, reminder.Options{
			Clock:        opts.Clock,
			Grace:        cfg.Reminders.Grace(),
			Capabilities: caps,
		})
		s.SetReminders(a.Scheduler)
	} else {
		log.Warn().Int("schema_version", caps.SchemaVersion).Msg("store has no notification registry, reminders disabled")
	}

	log.Debug().
		Str("path", s.Path()).
		Bool("shared", s.Shared()).
		Int("schema_version", caps.SchemaVersion).
		Msg("store opened")
	return a, nil
}

// Dispatcher returns a notification dispatcher polling at the configured
// interval. Task changes made through this process trigger an extra pass.
// It is nil when reminders are unavailable.
func (a *App) Dispatcher(d notify.Deliverer, clock reminder.Clock) *notify.Dispatcher {
	if a.Notifier == nil {
		return nil
	}
	return notify.NewDispatcher(a.Store, d, notify.DispatcherOptions{
		Interval: time.Duration(a.Config.Notify.PollSeconds) * time.Second,
		Clock:    clock,
		Changes:  a.Store.Bus().Subscribe(bus.TasksChanged).C(),
	})
}

// ReconcileReminders reschedules the reminder of every incomplete task with
// a due date. Tasks saved while permission was missing get registered once
// it is granted. It returns the number of tasks visited.
func (a *App) ReconcileReminders(ctx context.Context) (int, error) {
	if a.Scheduler == nil {
		return 0, nil
	}
	tasks, err := a.Store.QueryTasks(ctx, store.TaskFilter{}.Incomplete())
	if err != nil {
		return 0, fmt.Errorf("listing tasks to reconcile: %w", err)
	}

	n := 0
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if err := a.Scheduler.Reschedule(ctx, t); err != nil {
			return n, fmt.Errorf("rescheduling task %s: %w", t.ID, err)
		}
		n++
	}
	return n, nil
}

// WidgetProvider returns a snapshot provider reading the same file this
// process writes to.
func (a *App) WidgetProvider() *widget.Provider {
	return widget.NewProvider(a.Store.Path(), a.Config.Widget.Limit)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
