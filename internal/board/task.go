package board

import (
	"fmt"
	"strings"
	"time"
)

// Status names the column a task currently sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

// Columns lists every status in display order.
var Columns = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus accepts the canonical status names, case-insensitively.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}

// Valid reports whether s is one of the three board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the column a "move" action advances to. Done has no next
// column.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusTodo:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusDone, true
	}
	return "", false
}

// Label is the column heading shown in the UI.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

func (s Status) String() string { return string(s) }

// Task is a single card on the board.
type Task struct {
	ID      string
	Title   string
	Status  Status
	Created time.Time
}
