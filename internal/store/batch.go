package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/bus"
)

// deleteChunkSize bounds how many rows one batch transaction removes.
const deleteChunkSize = 100

// DeleteAllCompleted removes every completed task and returns how many were
// removed. Rows are deleted in committed chunks; if a chunk fails, the count
// of rows already removed is returned together with the error.
func (s *SQLiteStore) DeleteAllCompleted(ctx context.Context) (int, error) {
	if err := s.checkWritable(); err != nil {
		return 0, err
	}

	deleted, err := s.deleteCompleted(ctx)
	if len(deleted) > 0 {
		s.publish(bus.TasksChanged, bus.Payload{Kind: bus.KindDeleted, Batch: true})
		for _, id := range deleted {
			s.cancelReminder(ctx, id)
		}
	}
	return len(deleted), err
}

func (s *SQLiteStore) deleteCompleted(ctx context.Context) ([]string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, "SELECT id FROM tasks WHERE is_completed = 1 ORDER BY id"); err != nil {
		return nil, persistErr("listing completed tasks", err)
	}

	var deleted []string
	for start := 0; start < len(ids); start += deleteChunkSize {
		end := min(start+deleteChunkSize, len(ids))
		chunk := ids[start:end]

		removed, err := s.deleteTaskChunk(ctx, chunk)
		deleted = append(deleted, removed...)
		if err != nil {
			log.Error().Err(err).Int("deleted", len(deleted)).Msg("deleting completed tasks stopped early")
			return deleted, err
		}
	}
	return deleted, nil
}

// deleteTaskChunk removes the listed tasks that are still completed in one
// transaction and returns the IDs it actually removed.
func (s *SQLiteStore) deleteTaskChunk(ctx context.Context, chunk []string) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	// Another process may have reopened or removed some of these rows since
	// they were listed.
	query, args, err := sqlx.In("SELECT id FROM tasks WHERE is_completed = 1 AND id IN (?)", chunk)
	if err != nil {
		return nil, fmt.Errorf("building chunk query: %w", err)
	}
	var present []string
	if err := tx.SelectContext(ctx, &present, query, args...); err != nil {
		return nil, persistErr("re-reading completed tasks", err)
	}
	if len(present) == 0 {
		return nil, nil
	}

	query, args, err = sqlx.In("DELETE FROM tasks WHERE id IN (?)", present)
	if err != nil {
		return nil, fmt.Errorf("building delete query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, persistErr("deleting completed tasks", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, persistErr("committing completed task deletion", err)
	}
	return present, nil
}

// DeleteAllData wipes tasks, categories, notes and the notification
// registry. It returns the number of task, category and note rows removed.
func (s *SQLiteStore) DeleteAllData(ctx context.Context) (int, error) {
	if err := s.checkWritable(); err != nil {
		return 0, err
	}

	taskIDs, removed, err := s.deleteAll(ctx)
	if err != nil {
		return 0, err
	}

	s.bus.Publish(bus.TasksChanged, bus.Payload{Kind: bus.KindDeleted, Batch: true})
	s.bus.Publish(bus.CategoriesChanged, bus.Payload{Kind: bus.KindDeleted, Batch: true})
	s.bus.Publish(bus.DataChanged, bus.Payload{Kind: bus.KindDeleted, Batch: true})
	for _, id := range taskIDs {
		s.cancelReminder(ctx, id)
	}
	return removed, nil
}

func (s *SQLiteStore) deleteAll(ctx context.Context) ([]string, int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	var taskIDs []string
	if err := tx.SelectContext(ctx, &taskIDs, "SELECT id FROM tasks"); err != nil {
		return nil, 0, persistErr("listing tasks", err)
	}

	tables := []string{"tasks", "categories", "notes"}
	removed := 0
	for _, table := range tables {
		result, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return nil, 0, persistErr("deleting "+table, err)
		}
		n, _ := result.RowsAffected()
		removed += int(n)
	}
	if s.caps.NotificationRegistry {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
			return nil, 0, persistErr("deleting notifications", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, persistErr("committing data deletion", err)
	}
	return taskIDs, removed, nil
}
