package goal

import (
	"time"

	"github.com/google/uuid"
)

type Goal struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	IsCompleted bool      `json:"isCompleted"`
}

// New builds a goal with a fresh id. Title and description are taken as is,
// empty values included.
func New(title, description string, deadline time.Time) Goal {
	return Goal{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Deadline:    NormalizeDeadline(deadline),
	}
}

// Deadlines are stored as RFC 3339, which only covers these years.
const (
	MinDeadlineYear = 0
	MaxDeadlineYear = 9999
)

// ValidDeadline reports whether t survives an encode/decode cycle.
func ValidDeadline(t time.Time) bool {
	y := t.UTC().Year()
	return y >= MinDeadlineYear && y <= MaxDeadlineYear
}

// NormalizeDeadline converts to UTC and drops the monotonic reading so a
// deadline compares equal to itself after an encode/decode cycle.
func NormalizeDeadline(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// Equal compares all fields, using time.Time.Equal for the deadline.
func (g Goal) Equal(other Goal) bool {
	return g.ID == other.ID &&
		g.Title == other.Title &&
		g.Description == other.Description &&
		g.Deadline.Equal(other.Deadline) &&
		g.IsCompleted == other.IsCompleted
}
