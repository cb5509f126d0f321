// Package widget builds the glanceable snapshots shown outside the main
// app. It never holds a store open between refreshes and never writes.
package widget

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/model"
	"github.com/nhle/taskdock/internal/store"
)

const (
	// DefaultLimit is how many tasks each list shows when unconfigured.
	DefaultLimit = 5
	// MaxLimit is the largest list a widget family can show.
	MaxLimit = 10
)

// Snapshot is one point-in-time view of the store.
type Snapshot struct {
	GeneratedAt       time.Time
	TodayTasks        []model.Task
	HighPriorityTasks []model.Task
	// Categories holds the categories referenced by the listed tasks.
	Categories map[string]model.Category
}

// Empty reports whether the snapshot has no tasks at all.
func (s Snapshot) Empty() bool {
	return len(s.TodayTasks) == 0 && len(s.HighPriorityTasks) == 0
}

// Provider reads snapshots from the shared store file.
type Provider struct {
	path  string
	limit int
}

// NewProvider creates a Provider for the store at path. limit is clamped
// to 1..MaxLimit; anything outside that range uses DefaultLimit.
func NewProvider(path string, limit int) *Provider {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return &Provider{path: path, limit: limit}
}

// Limit returns the per-list cap.
func (p *Provider) Limit() int { return p.limit }

// Snapshot opens the store read-only, reads today's and high-priority
// incomplete tasks, and closes it again. Any failure yields an empty
// snapshot.
func (p *Provider) Snapshot(ctx context.Context, now time.Time) Snapshot {
	empty := Snapshot{GeneratedAt: now}

	s, err := store.OpenReadOnly(p.path)
	if err != nil {
		log.Warn().Err(err).Str("path", p.path).Msg("widget could not open store")
		return empty
	}
	defer s.Close()

	start := StartOfDay(now)
	today, err := s.QueryTasks(ctx, store.TaskFilter{}.
		Incomplete().
		DueWithin(start, start.AddDate(0, 0, 1)).
		SortedBy(store.SortDueDate, false).
		Take(p.limit))
	if err != nil {
		log.Warn().Err(err).Msg("widget could not read today's tasks")
		return empty
	}

	high, err := s.QueryTasks(ctx, store.TaskFilter{}.
		Incomplete().
		WithPriority(model.PriorityHigh).
		SortedBy(store.SortDueDate, false).
		Take(p.limit))
	if err != nil {
		log.Warn().Err(err).Msg("widget could not read high priority tasks")
		return empty
	}

	return Snapshot{
		GeneratedAt:       now,
		TodayTasks:        today,
		HighPriorityTasks: high,
		Categories:        p.categories(ctx, s, today, high),
	}
}

// categories resolves the category of every listed task. Lookup failures
// only cost the label.
func (p *Provider) categories(ctx context.Context, s store.Store, lists ...[]model.Task) map[string]model.Category {
	out := make(map[string]model.Category)
	for _, tasks := range lists {
		for _, t := range tasks {
			if t.CategoryID == nil {
				continue
			}
			if _, ok := out[*t.CategoryID]; ok {
				continue
			}
			c, found, err := s.GetCategory(ctx, *t.CategoryID)
			if err != nil {
				log.Debug().Err(err).Str("category_id", *t.CategoryID).Msg("widget category lookup")
				continue
			}
			if found {
				out[c.ID] = c
			}
		}
	}
	return out
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
