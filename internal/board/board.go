// Package board holds the in-memory task list behind the board screen.
//
// Add and Delete apply immediately. Move is optimistic: the new status is
// applied right away and the returned Move record is later settled with
// either Commit (the remote side confirmed) or Rollback (it refused).
package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RollbackMode selects what Rollback restores when a move is refused.
type RollbackMode string

const (
	// RollbackTask reverts only the moved task to its prior status.
	RollbackTask RollbackMode = "task"
	// RollbackSnapshot restores the whole task list captured when the move
	// started. Anything added, deleted or moved in the meantime is lost.
	RollbackSnapshot RollbackMode = "snapshot"
)

// ParseRollbackMode maps a config value onto a RollbackMode.
func ParseRollbackMode(value string) (RollbackMode, error) {
	switch mode := RollbackMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case RollbackTask, RollbackSnapshot:
		return mode, nil
	case "":
		return RollbackTask, nil
	default:
		return "", fmt.Errorf("board: rollback mode must be 'task' or 'snapshot', got %q", value)
	}
}

// Move records an optimistic status change that is waiting on
// confirmation.
type Move struct {
	Seq    uint64
	TaskID string
	From   Status
	To     Status

	snapshot []Task
}

// Option customizes Board construction.
type Option func(*Board)

// WithRollbackMode overrides the default per-task rollback.
func WithRollbackMode(mode RollbackMode) Option {
	return func(b *Board) {
		if mode != "" {
			b.mode = mode
		}
	}
}

// WithIDGenerator lets tests produce predictable task ids.
func WithIDGenerator(gen func() string) Option {
	return func(b *Board) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithClock allows tests to control creation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(b *Board) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// Board is the task list. It is not safe for concurrent use; the TUI only
// touches it from the bubbletea update loop.
type Board struct {
	tasks   []Task
	mode    RollbackMode
	newID   func() string
	clock   func() time.Time
	seq     uint64
	pending map[uint64]Move
}

// New returns an empty board.
func New(opts ...Option) *Board {
	b := &Board{
		mode:    RollbackTask,
		newID:   newTaskID,
		clock:   func() time.Time { return time.Now().UTC() },
		pending: map[uint64]Move{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Mode reports the rollback mode in effect.
func (b *Board) Mode() RollbackMode { return b.mode }

// Len returns the number of tasks on the board.
func (b *Board) Len() int { return len(b.tasks) }

// Tasks returns a copy of the task list in insertion order.
func (b *Board) Tasks() []Task {
	return cloneTasks(b.tasks)
}

// Get looks up a task by id.
func (b *Board) Get(id string) (Task, bool) {
	if idx := b.index(id); idx >= 0 {
		return b.tasks[idx], true
	}
	return Task{}, false
}

// Column filters the task list down to one status. The result is rebuilt
// on every call.
func (b *Board) Column(status Status) []Task {
	var out []Task
	for _, task := range b.tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// Add appends a new todo task.
func (b *Board) Add(title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	task := Task{
		ID:      b.newID(),
		Title:   title,
		Status:  StatusTodo,
		Created: b.clock(),
	}
	b.tasks = append(b.tasks, task)
	return task, nil
}

// Delete removes the task with the given id. It reports whether a task was
// removed; unknown ids are ignored.
func (b *Board) Delete(id string) bool {
	idx := b.index(id)
	if idx < 0 {
		return false
	}
	b.tasks = append(b.tasks[:idx], b.tasks[idx+1:]...)
	return true
}

// Move applies status to the task immediately and returns the record
// needed to settle it later.
func (b *Board) Move(id string, status Status) (Move, error) {
	if !status.Valid() {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	idx := b.index(id)
	if idx < 0 {
		return Move{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	b.seq++
	move := Move{
		Seq:    b.seq,
		TaskID: id,
		From:   b.tasks[idx].Status,
		To:     status,
	}
	if b.mode == RollbackSnapshot {
		move.snapshot = cloneTasks(b.tasks)
	}
	b.tasks[idx].Status = status
	b.pending[move.Seq] = move
	return move, nil
}

// Commit settles a confirmed move. The optimistic state stands.
func (b *Board) Commit(move Move) bool {
	if _, ok := b.pending[move.Seq]; !ok {
		return false
	}
	delete(b.pending, move.Seq)
	return true
}

// Rollback settles a refused move and reports whether the task list
// changed.
//
// In snapshot mode the list captured by Move replaces the current one. In
// task mode the moved task returns to move.From, and any later moves of
// the same task are cancelled since they started from the refused status.
func (b *Board) Rollback(move Move) bool {
	if _, ok := b.pending[move.Seq]; !ok {
		return false
	}
	delete(b.pending, move.Seq)

	if b.mode == RollbackSnapshot {
		b.tasks = cloneTasks(move.snapshot)
		return true
	}
	for seq, later := range b.pending {
		if later.TaskID == move.TaskID && seq > move.Seq {
			delete(b.pending, seq)
		}
	}
	idx := b.index(move.TaskID)
	if idx < 0 {
		return false
	}
	b.tasks[idx].Status = move.From
	return true
}

// IsPending reports whether move still awaits Commit or Rollback. Moves
// cancelled by an earlier rollback are no longer pending.
func (b *Board) IsPending(move Move) bool {
	_, ok := b.pending[move.Seq]
	return ok
}

// Pending counts unsettled moves for a task.
func (b *Board) Pending(id string) int {
	count := 0
	for _, move := range b.pending {
		if move.TaskID == id {
			count++
		}
	}
	return count
}

// PendingTotal counts every unsettled move on the board.
func (b *Board) PendingTotal() int { return len(b.pending) }

func (b *Board) index(id string) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
