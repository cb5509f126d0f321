package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
)

const baseTaskColumns = "id, title, description, due_date, priority, is_completed, category_id, date_created, date_modified"

// taskColumns returns the task column list the opened schema supports.
func (s *SQLiteStore) taskColumns() string {
	if s.caps.Reminders {
		return baseTaskColumns + ", reminder_type, custom_reminder_offset"
	}
	return baseTaskColumns
}

// AddTask inserts a new task and returns its generated ID.
func (s *SQLiteStore) AddTask(ctx context.Context, f model.TaskFields) (string, error) {
	if err := s.checkWritable(); err != nil {
		return "", err
	}
	if strings.TrimSpace(f.Title) == "" {
		return "", validationErr("task title must not be empty")
	}

	now := s.now().UTC()
	task := model.Task{
		ID:                   uuid.New().String(),
		Title:                f.Title,
		Description:          f.Description,
		DueDate:              utcPtr(f.DueDate),
		Priority:             model.ParsePriority(string(f.Priority)),
		IsCompleted:          f.IsCompleted,
		DateCreated:          now,
		DateModified:         now,
		ReminderType:         model.ParseReminderType(string(f.ReminderType)),
		CustomReminderOffset: f.CustomReminderOffset,
	}
	if !s.caps.Reminders {
		task.ReminderType = model.ReminderNone
		task.CustomReminderOffset = 0
	}

	if err := s.insertTask(ctx, &task, f.CategoryID); err != nil {
		return "", err
	}

	s.publishTask(bus.KindCreated, task)
	if task.HasReminder() {
		s.reschedule(ctx, task)
	}
	return task.ID, nil
}

func (s *SQLiteStore) insertTask(ctx context.Context, task *model.Task, categoryID *string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	resolved, err := s.resolveCategory(ctx, tx, categoryID)
	if err != nil {
		return err
	}
	task.CategoryID = resolved

	if s.caps.Reminders {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, title, description, due_date, priority, is_completed,
				category_id, date_created, date_modified,
				reminder_type, custom_reminder_offset
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.Title, task.Description, task.DueDate,
			string(task.Priority), boolToInt(task.IsCompleted),
			task.CategoryID, task.DateCreated, task.DateModified,
			string(task.ReminderType), task.CustomReminderOffset,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (
				id, title, description, due_date, priority, is_completed,
				category_id, date_created, date_modified
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.Title, task.Description, task.DueDate,
			string(task.Priority), boolToInt(task.IsCompleted),
			task.CategoryID, task.DateCreated, task.DateModified,
		)
	}
	if err != nil {
		return persistErr("creating task", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("committing task", err)
	}
	return nil
}

// resolveCategory returns id when it names an existing category. An
// unresolvable id is dropped (and logged) or rejected depending on the
// store's CategoryPolicy.
func (s *SQLiteStore) resolveCategory(ctx context.Context, tx *sqlx.Tx, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM categories WHERE id = ?", *id); err != nil {
		return nil, persistErr("resolving category", err)
	}
	if count > 0 {
		resolved := *id
		return &resolved, nil
	}

	if s.categoryPolicy == CategoryReject {
		return nil, validationErr("category %s does not exist", *id)
	}
	log.Warn().Str("category_id", *id).Msg("category does not exist, leaving task uncategorized")
	return nil, nil
}

// UpdateTask applies a partial update. It returns false when no task has
// the given ID.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, u model.TaskUpdate) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return false, validationErr("task title must not be empty")
	}

	before, after, found, err := s.modifyTask(ctx, id, func(tx *sqlx.Tx, t *model.Task) error {
		return s.applyUpdate(ctx, tx, t, u)
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	s.publishTask(bus.KindUpdated, after)
	if u.TouchesReminder() || before.Title != after.Title || before.Description != after.Description {
		s.reschedule(ctx, after)
	}
	return true, nil
}

func (s *SQLiteStore) applyUpdate(ctx context.Context, tx *sqlx.Tx, t *model.Task, u model.TaskUpdate) error {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.RemoveDueDate {
		t.DueDate = nil
	} else if u.DueDate != nil {
		t.DueDate = utcPtr(u.DueDate)
	}
	if u.Priority != nil {
		t.Priority = model.ParsePriority(string(*u.Priority))
	}
	if u.IsCompleted != nil {
		t.IsCompleted = *u.IsCompleted
	}
	if u.RemoveCategory {
		t.CategoryID = nil
	} else if u.CategoryID != nil {
		resolved, err := s.resolveCategory(ctx, tx, u.CategoryID)
		if err != nil {
			return err
		}
		t.CategoryID = resolved
	}
	if s.caps.Reminders {
		if u.ReminderType != nil {
			t.ReminderType = model.ParseReminderType(string(*u.ReminderType))
		}
		if u.CustomReminderOffset != nil {
			t.CustomReminderOffset = *u.CustomReminderOffset
		}
	}
	return nil
}

// ToggleTaskCompletion flips a task's completion flag. It returns false when
// no task has the given ID.
func (s *SQLiteStore) ToggleTaskCompletion(ctx context.Context, id string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}

	_, after, found, err := s.modifyTask(ctx, id, func(_ *sqlx.Tx, t *model.Task) error {
		t.IsCompleted = !t.IsCompleted
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	s.publishTask(bus.KindUpdated, after)
	s.reschedule(ctx, after)
	return true, nil
}

// modifyTask loads a task inside a write transaction, lets mutate change it,
// stamps DateModified and writes every column back.
func (s *SQLiteStore) modifyTask(
	ctx context.Context,
	id string,
	mutate func(tx *sqlx.Tx, t *model.Task) error,
) (before, after model.Task, found bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return before, after, false, persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowxContext(ctx, "SELECT "+s.taskColumns()+" FROM tasks WHERE id = ?", id)
	before, err = s.scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return before, after, false, nil
	}
	if err != nil {
		return before, after, false, persistErr(fmt.Sprintf("loading task %s", id), err)
	}

	after = before
	if err := mutate(tx, &after); err != nil {
		return before, after, true, err
	}
	after.DateModified = s.stamp(before.DateModified)

	if err := s.writeTask(ctx, tx, after); err != nil {
		return before, after, true, err
	}
	if err := tx.Commit(); err != nil {
		return before, after, true, persistErr(fmt.Sprintf("committing task %s", id), err)
	}
	return before, after, true, nil
}

func (s *SQLiteStore) writeTask(ctx context.Context, tx *sqlx.Tx, t model.Task) error {
	var err error
	if s.caps.Reminders {
		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET
				title = ?, description = ?, due_date = ?, priority = ?,
				is_completed = ?, category_id = ?, date_modified = ?,
				reminder_type = ?, custom_reminder_offset = ?
			WHERE id = ?`,
			t.Title, t.Description, t.DueDate, string(t.Priority),
			boolToInt(t.IsCompleted), t.CategoryID, t.DateModified,
			string(t.ReminderType), t.CustomReminderOffset,
			t.ID,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET
				title = ?, description = ?, due_date = ?, priority = ?,
				is_completed = ?, category_id = ?, date_modified = ?
			WHERE id = ?`,
			t.Title, t.Description, t.DueDate, string(t.Priority),
			boolToInt(t.IsCompleted), t.CategoryID, t.DateModified,
			t.ID,
		)
	}
	if err != nil {
		return persistErr(fmt.Sprintf("updating task %s", t.ID), err)
	}
	return nil
}

// DeleteTask removes a task and cancels its reminder. It returns false when
// no task has the given ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	s.writeMu.Unlock()
	if err != nil {
		return false, persistErr(fmt.Sprintf("deleting task %s", id), err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.publish(bus.TasksChanged, bus.Payload{ID: id, Kind: bus.KindDeleted})
	s.cancelReminder(ctx, id)
	return true, nil
}

// DeleteRecord removes a task or category by kind.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, kind model.EntityKind, id string) (bool, error) {
	switch kind {
	case model.EntityTask:
		return s.DeleteTask(ctx, id)
	case model.EntityCategory:
		return s.DeleteCategory(ctx, id)
	default:
		return false, validationErr("unknown entity kind %q", kind)
	}
}

// GetTask retrieves a single task by its ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (model.Task, bool, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT "+s.taskColumns()+" FROM tasks WHERE id = ?", id)
	task, err := s.scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, persistErr(fmt.Sprintf("getting task %s", id), err)
	}
	return task, true, nil
}

// QueryTasks retrieves tasks matching the filter.
func (s *SQLiteStore) QueryTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery("SELECT "+s.taskColumns(), filter, true)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("querying tasks", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, persistErr("scanning task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterating tasks", err)
	}
	return tasks, nil
}

// CountTasks returns the number of tasks matching the filter, ignoring its
// sort and pagination.
func (s *SQLiteStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	query, args := buildTaskQuery("SELECT COUNT(*)", filter, false)

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, persistErr("counting tasks", err)
	}
	return count, nil
}

// priorityRankSQL orders priorities low < medium < high.
const priorityRankSQL = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(selectClause string, filter TaskFilter, paged bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Completed != nil {
		conditions = append(conditions, "is_completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Uncategorized {
		conditions = append(conditions, "category_id IS NULL")
	} else if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.HasDueDate != nil {
		if *filter.HasDueDate {
			conditions = append(conditions, "due_date IS NOT NULL")
		} else {
			conditions = append(conditions, "due_date IS NULL")
		}
	}
	if filter.DueFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, filter.DueFrom.UTC())
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_date < ?")
		args = append(args, filter.DueBefore.UTC())
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := selectClause + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if !paged {
		return query, args
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	// Tasks without a due date sort last in either direction.
	var order string
	switch filter.SortBy {
	case SortDueDate:
		order = fmt.Sprintf("due_date IS NULL, due_date %s", direction)
	case SortDateModified:
		order = "date_modified " + direction
	case SortTitle:
		order = "title COLLATE NOCASE " + direction
	case SortPriority:
		order = fmt.Sprintf("%s %s, due_date IS NULL, due_date ASC", priorityRankSQL, direction)
	default:
		order = "date_created " + direction
	}
	query += " ORDER BY " + order + ", date_created ASC, id ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	return query, args
}

// scanTask scans a task row selected with taskColumns.
func (s *SQLiteStore) scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task        model.Task
		dueDate     sql.NullTime
		categoryID  sql.NullString
		priority    string
		completed   int
		createdAt   time.Time
		modifiedAt  time.Time
		reminder    = string(model.ReminderNone)
		customDelta int64
	)

	dest := []interface{}{
		&task.ID, &task.Title, &task.Description, &dueDate, &priority,
		&completed, &categoryID, &createdAt, &modifiedAt,
	}
	if s.caps.Reminders {
		dest = append(dest, &reminder, &customDelta)
	}
	if err := row.Scan(dest...); err != nil {
		return model.Task{}, err
	}

	if dueDate.Valid {
		d := dueDate.Time.UTC()
		task.DueDate = &d
	}
	if categoryID.Valid {
		c := categoryID.String
		task.CategoryID = &c
	}
	task.Priority = model.ParsePriority(priority)
	task.IsCompleted = completed != 0
	task.DateCreated = createdAt.UTC()
	task.DateModified = modifiedAt.UTC()
	task.ReminderType = model.ParseReminderType(reminder)
	task.CustomReminderOffset = customDelta

	return task, nil
}
