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

// AddCategory inserts a new category. An absent or invalid color falls back
// to model.DefaultCategoryColor.
func (s *SQLiteStore) AddCategory(ctx context.Context, name, colorHex string) (string, error) {
	if err := s.checkWritable(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", validationErr("category name must not be empty")
	}

	c := model.Category{
		ID:          uuid.New().String(),
		Name:        name,
		ColorHex:    model.NormalizeColor(colorHex),
		DateCreated: s.now().UTC(),
	}

	s.writeMu.Lock()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, color_hex, date_created) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, c.ColorHex, c.DateCreated,
	)
	s.writeMu.Unlock()
	if err != nil {
		return "", persistErr("creating category", err)
	}

	s.publish(bus.CategoriesChanged, bus.Payload{ID: c.ID, Kind: bus.KindCreated})
	return c.ID, nil
}

// UpdateCategory renames or recolors a category. It returns false when no
// category has the given ID.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id string, u model.CategoryUpdate) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return false, validationErr("category name must not be empty")
	}

	var sets []string
	var args []interface{}
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.ColorHex != nil {
		sets = append(sets, "color_hex = ?")
		args = append(args, model.NormalizeColor(*u.ColorHex))
	}
	if len(sets) == 0 {
		_, found, err := s.GetCategory(ctx, id)
		return found, err
	}
	args = append(args, id)

	s.writeMu.Lock()
	result, err := s.db.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	s.writeMu.Unlock()
	if err != nil {
		return false, persistErr(fmt.Sprintf("updating category %s", id), err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	s.publish(bus.CategoriesChanged, bus.Payload{ID: id, Kind: bus.KindUpdated})
	return true, nil
}

// DeleteCategory removes a category after clearing category_id on every
// task that references it. Tasks are never deleted with their category.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := s.checkWritable(); err != nil {
		return false, err
	}

	cleared, found, err := s.deleteCategory(ctx, id)
	if err != nil || !found {
		return false, err
	}

	s.publish(bus.CategoriesChanged, bus.Payload{ID: id, Kind: bus.KindDeleted})
	if cleared > 0 {
		s.publish(bus.TasksChanged, bus.Payload{CategoryID: id, Kind: bus.KindUpdated, Batch: true})
	}
	return true, nil
}

func (s *SQLiteStore) deleteCategory(ctx context.Context, id string) (cleared int64, found bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, persistErr("beginning transaction", err)
	}
	defer tx.Rollback()

	var refs []struct {
		ID           string    `db:"id"`
		DateModified time.Time `db:"date_modified"`
	}
	if err := tx.SelectContext(ctx, &refs,
		"SELECT id, date_modified FROM tasks WHERE category_id = ?", id); err != nil {
		return 0, false, persistErr(fmt.Sprintf("listing tasks in category %s", id), err)
	}
	for _, ref := range refs {
		_, err := tx.ExecContext(ctx,
			"UPDATE tasks SET category_id = NULL, date_modified = ? WHERE id = ?",
			s.stamp(ref.DateModified), ref.ID)
		if err != nil {
			return 0, false, persistErr(fmt.Sprintf("clearing category %s from task %s", id, ref.ID), err)
		}
	}
	cleared = int64(len(refs))

	result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return 0, false, persistErr(fmt.Sprintf("deleting category %s", id), err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return 0, false, nil
	}

	if err := tx.Commit(); err != nil {
		return 0, false, persistErr(fmt.Sprintf("committing category %s deletion", id), err)
	}
	return cleared, true, nil
}

// GetCategory retrieves a single category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (model.Category, bool, error) {
	var c model.Category
	err := s.db.QueryRowxContext(ctx,
		"SELECT id, name, color_hex, date_created FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.ColorHex, &c.DateCreated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, false, nil
	}
	if err != nil {
		return model.Category{}, false, persistErr(fmt.Sprintf("getting category %s", id), err)
	}
	c.ColorHex = model.NormalizeColor(c.ColorHex)
	return c, true, nil
}

// QueryCategories retrieves categories ordered by name unless the filter
// says otherwise.
func (s *SQLiteStore) QueryCategories(ctx context.Context, filter CategoryFilter) ([]model.Category, error) {
	query := "SELECT id, name, color_hex, date_created FROM categories"
	var args []interface{}
	if filter.Query != nil && *filter.Query != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+*filter.Query+"%")
	}

	sortBy := "name COLLATE NOCASE"
	if filter.SortBy == "date_created" {
		sortBy = "date_created"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("querying categories", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ColorHex, &c.DateCreated); err != nil {
			return nil, persistErr("scanning category row", err)
		}
		c.ColorHex = model.NormalizeColor(c.ColorHex)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterating categories", err)
	}
	return categories, nil
}
