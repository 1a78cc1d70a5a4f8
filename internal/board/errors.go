package board

import "errors"

var (
	// ErrEmptyTitle is returned by Add when the trimmed title is empty.
	ErrEmptyTitle = errors.New("board: task title is required")
	// ErrTaskNotFound is returned by Move for an unknown task id.
	ErrTaskNotFound = errors.New("board: task not found")
	// ErrInvalidStatus is returned for statuses outside the three columns.
	ErrInvalidStatus = errors.New("board: invalid status")
)
