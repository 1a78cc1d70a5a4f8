// Package confirm provides the remote acknowledgement a board move waits
// on. The only real implementation is Simulated, which sleeps for a random
// delay and then randomly refuses.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const (
	// DefaultMinDelay is the shortest simulated round trip.
	DefaultMinDelay = 1000 * time.Millisecond
	// DefaultMaxDelay bounds the simulated round trip (exclusive).
	DefaultMaxDelay = 3000 * time.Millisecond
	// DefaultFailureRate is the probability that a confirmation is refused.
	DefaultFailureRate = 0.2
)

// ErrRejected is returned when the remote side refuses a change.
var ErrRejected = errors.New("confirm: change rejected")

// Confirmer acknowledges a pending change. A nil error means success.
type Confirmer interface {
	Confirm(ctx context.Context) error
}

// Func adapts a plain function into a Confirmer.
type Func func(ctx context.Context) error

// Confirm calls f.
func (f Func) Confirm(ctx context.Context) error { return f(ctx) }

// Fixed returns a Confirmer that answers immediately with err.
func Fixed(err error) Confirmer {
	return Func(func(context.Context) error { return err })
}

// Settings configures Simulated.
type Settings struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	FailureRate float64
}

// DefaultSettings returns 1-3s latency with 20% failures.
func DefaultSettings() Settings {
	return Settings{
		MinDelay:    DefaultMinDelay,
		MaxDelay:    DefaultMaxDelay,
		FailureRate: DefaultFailureRate,
	}
}

// Validate checks the latency window and failure probability.
func (s Settings) Validate() error {
	if s.MinDelay < 0 {
		return fmt.Errorf("confirm: min delay must not be negative")
	}
	if s.MaxDelay < s.MinDelay {
		return fmt.Errorf("confirm: max delay %s is below min delay %s", s.MaxDelay, s.MinDelay)
	}
	if s.FailureRate < 0 || s.FailureRate > 1 {
		return fmt.Errorf("confirm: failure rate must be within [0, 1], got %v", s.FailureRate)
	}
	return nil
}

// Option customizes a Simulated confirmer.
type Option func(*Simulated)

// WithRand replaces the random source, typically with a seeded one.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulated) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSleeper replaces the wait between request and answer.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Simulated) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// Simulated stands in for a backend call: it waits a delay drawn
// uniformly from [MinDelay, MaxDelay) and then fails with probability
// FailureRate, independently of what is being confirmed.
type Simulated struct {
	settings Settings
	sleep    func(ctx context.Context, d time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated validates settings and builds the confirmer.
func NewSimulated(settings Settings, opts ...Option) (*Simulated, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Simulated{
		settings: settings,
		sleep:    sleepContext,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Settings returns the configuration in use.
func (s *Simulated) Settings() Settings { return s.settings }

// Confirm blocks for the simulated latency and reports the outcome. A
// cancelled context ends the wait early with ctx.Err().
func (s *Simulated) Confirm(ctx context.Context) error {
	delay, fail := s.draw()
	if err := s.sleep(ctx, delay); err != nil {
		return err
	}
	if fail {
		return ErrRejected
	}
	return nil
}

// draw picks the delay and the outcome together so both come from one
// locked section of the random source.
func (s *Simulated) draw() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delay := s.settings.MinDelay
	if span := s.settings.MaxDelay - s.settings.MinDelay; span > 0 {
		delay += time.Duration(s.rng.Int63n(int64(span)))
	}
	return delay, s.rng.Float64() < s.settings.FailureRate
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
