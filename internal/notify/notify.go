// Package notify keeps the short-lived toast messages shown on top of the
// board. The center only stores them; the TUI schedules expiry ticks.
package notify

import (
	"time"
)

// Severity distinguishes good news from bad news.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

const (
	DefaultSuccessTTL = 2 * time.Second
	DefaultErrorTTL   = 4 * time.Second
	DefaultMaxVisible = 4
)

// Notification is a single toast.
type Notification struct {
	ID       uint64
	Severity Severity
	Message  string
	Created  time.Time
	TTL      time.Duration
}

// Settings controls how long toasts live and how many stay on screen.
type Settings struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
	MaxVisible int
}

func (s Settings) normalized() Settings {
	if s.SuccessTTL <= 0 {
		s.SuccessTTL = DefaultSuccessTTL
	}
	if s.ErrorTTL <= 0 {
		s.ErrorTTL = DefaultErrorTTL
	}
	if s.MaxVisible <= 0 {
		s.MaxVisible = DefaultMaxVisible
	}
	return s
}

// Center holds the active notifications, oldest first.
type Center struct {
	settings Settings
	clock    func() time.Time
	nextID   uint64
	items    []Notification
	total    map[Severity]int
}

// NewCenter builds an empty center. A nil clock uses time.Now.
func NewCenter(settings Settings, clock func() time.Time) *Center {
	if clock == nil {
		clock = time.Now
	}
	return &Center{
		settings: settings.normalized(),
		clock:    clock,
		total:    map[Severity]int{},
	}
}

// Success posts a success toast.
func (c *Center) Success(message string) Notification {
	return c.push(SeveritySuccess, message, c.settings.SuccessTTL)
}

// Error posts an error toast.
func (c *Center) Error(message string) Notification {
	return c.push(SeverityError, message, c.settings.ErrorTTL)
}

func (c *Center) push(severity Severity, message string, ttl time.Duration) Notification {
	c.nextID++
	n := Notification{
		ID:       c.nextID,
		Severity: severity,
		Message:  message,
		Created:  c.clock(),
		TTL:      ttl,
	}
	c.items = append(c.items, n)
	if overflow := len(c.items) - c.settings.MaxVisible; overflow > 0 {
		c.items = append([]Notification(nil), c.items[overflow:]...)
	}
	c.total[severity]++
	return n
}

// Dismiss drops a toast by id and reports whether it was still visible.
func (c *Center) Dismiss(id uint64) bool {
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every visible toast.
func (c *Center) Clear() {
	c.items = nil
}

// Active returns the visible toasts, oldest first.
func (c *Center) Active() []Notification {
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Count reports how many toasts of a severity were ever posted, including
// ones that already expired.
func (c *Center) Count(severity Severity) int {
	return c.total[severity]
}
