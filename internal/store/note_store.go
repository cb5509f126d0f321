package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
)

// AddNote inserts a new brain-dump note. Notes only publish DataChanged.
func (s *SQLiteStore) AddNote(ctx context.Context, content string) (string, error) {
	if err := s.checkWritable(); err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", validationErr("note content must not be empty")
	}

	now := s.now().UTC()
	id := uuid.New().String()

	s.writeMu.Lock()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, content, date_created, date_modified) VALUES (?, ?, ?, ?)",
		id, content, now, now,
	)
	s.writeMu.Unlock()
	if err != nil {
		return "", persistErr("creating note", err)
	}

	s.bus.Publish(bus.DataChanged, bus.Payload{ID: id, Kind: bus.KindCreated})
	return id, nil
}

// UpdateNote replaces a note's content.
func (s *SQLiteStore) UpdateNote(ctx context.Context, id, content string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}
	if strings.TrimSpace(content) == "" {
		return false, validationErr("note content must not be empty")
	}

	found, err := s.updateNote(ctx, id, content)
	if err != nil || !found {
		return false, err
	}

	s.bus.Publish(bus.DataChanged, bus.Payload{ID: id, Kind: bus.KindUpdated})
	return true, nil
}

func (s *SQLiteStore) updateNote(ctx context.Context, id, content string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	var prev time.Time
	err = tx.QueryRowxContext(ctx, "SELECT date_modified FROM notes WHERE id = ?", id).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, persistErr(fmt.Sprintf("loading note %s", id), err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE notes SET content = ?, date_modified = ? WHERE id = ?",
		content, s.stamp(prev.UTC()), id,
	); err != nil {
		return false, persistErr(fmt.Sprintf("updating note %s", id), err)
	}
	if err := tx.Commit(); err != nil {
		return false, persistErr(fmt.Sprintf("committing note %s", id), err)
	}
	return true, nil
}

// DeleteNote removes a note by ID.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	s.writeMu.Unlock()
	if err != nil {
		return false, persistErr(fmt.Sprintf("deleting note %s", id), err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.bus.Publish(bus.DataChanged, bus.Payload{ID: id, Kind: bus.KindDeleted})
	return true, nil
}

// ListNotes returns notes, most recently modified first.
func (s *SQLiteStore) ListNotes(ctx context.Context, limit int) ([]model.Note, error) {
	query := "SELECT id, content, date_created, date_modified FROM notes ORDER BY date_modified DESC, id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, persistErr("querying notes", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.DateCreated, &n.DateModified); err != nil {
			return nil, persistErr("scanning note row", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterating notes", err)
	}
	return notes, nil
}
