package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/taskdock/internal/store"
)

// dueLayouts are the accepted --due formats, tried in order.
var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDue parses a user-supplied due date in loc. "today" and "tomorrow"
// resolve to the end of that day; a bare date means 09:00.
func ParseDue(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "today":
		return endOfDay(now.In(loc)), nil
	case "tomorrow":
		return endOfDay(now.In(loc).AddDate(0, 0, 1)), nil
	}

	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(9 * time.Hour)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised due date %q", store.ErrValidation, raw)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 0, 0, t.Location())
}

// ResolveTaskID expands a unique ID prefix, as printed by the list
// command, to a full task ID.
func ResolveTaskID(ctx context.Context, s store.Store, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty task id", store.ErrValidation)
	}
	if _, found, err := s.GetTask(ctx, prefix); err != nil {
		return "", err
	} else if found {
		return prefix, nil
	}

	tasks, err := s.QueryTasks(ctx, store.TaskFilter{})
	if err != nil {
		return "", err
	}
	var match string
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: task id %q is ambiguous", store.ErrValidation, prefix)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", prefix)
	}
	return match, nil
}

// ResolveCategory finds a category by exact ID or case-insensitive name.
func ResolveCategory(ctx context.Context, s store.Store, ref string) (string, error) {
	if _, found, err := s.GetCategory(ctx, ref); err != nil {
		return "", err
	} else if found {
		return ref, nil
	}

	cats, err := s.QueryCategories(ctx, store.CategoryFilter{})
	if err != nil {
		return "", err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no category named %q", ref)
}
