package model

import (
	"regexp"
	"time"
)

// DefaultCategoryColor is used whenever a category has no valid color.
const DefaultCategoryColor = "#007AFF"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeColor returns c when it is a #RRGGBB value, else
// DefaultCategoryColor.
func NormalizeColor(c string) string {
	if hexColorPattern.MatchString(c) {
		return c
	}
	return DefaultCategoryColor
}

// Category groups tasks. Tasks hold the back-reference via CategoryID.
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ColorHex    string    `json:"color_hex" db:"color_hex"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// Color returns the display color, applying the default fallback.
func (c Category) Color() string {
	return NormalizeColor(c.ColorHex)
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name     *string
	ColorHex *string
}

// Note is a free-form "brain dump" entry.
type Note struct {
	ID           string    `json:"id" db:"id"`
	Content      string    `json:"content" db:"content"`
	DateCreated  time.Time `json:"date_created" db:"date_created"`
	DateModified time.Time `json:"date_modified" db:"date_modified"`
}

// EntityKind identifies a record type for kind-generic store operations.
type EntityKind string

const (
	EntityTask     EntityKind = "task"
	EntityCategory EntityKind = "category"
)
