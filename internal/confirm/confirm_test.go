package confirm

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func TestSimulatedDelayStaysInWindow(t *testing.T) {
	rec := &recordingSleeper{}
	sim, err := NewSimulated(DefaultSettings(), WithRand(rand.New(rand.NewSource(7))), WithSleeper(rec.sleep))
	if err != nil {
		t.Fatalf("new simulated: %v", err)
	}
	for i := 0; i < 500; i++ {
		_ = sim.Confirm(context.Background())
	}
	if len(rec.delays) != 500 {
		t.Fatalf("recorded %d delays, want 500", len(rec.delays))
	}
	for _, d := range rec.delays {
		if d < DefaultMinDelay || d >= DefaultMaxDelay {
			t.Fatalf("delay %s outside [%s, %s)", d, DefaultMinDelay, DefaultMaxDelay)
		}
	}
}

func TestSimulatedFailureRateExtremes(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want error
	}{
		{name: "never", rate: 0, want: nil},
		{name: "always", rate: 1, want: ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSleeper{}
			sim, err := NewSimulated(Settings{FailureRate: tt.rate}, WithSleeper(rec.sleep))
			if err != nil {
				t.Fatalf("new simulated: %v", err)
			}
			for i := 0; i < 50; i++ {
				if got := sim.Confirm(context.Background()); !errors.Is(got, tt.want) {
					t.Fatalf("confirm #%d = %v, want %v", i, got, tt.want)
				}
			}
		})
	}
}

func TestSimulatedFailureRateRoughlyHolds(t *testing.T) {
	rec := &recordingSleeper{}
	sim, err := NewSimulated(DefaultSettings(), WithRand(rand.New(rand.NewSource(42))), WithSleeper(rec.sleep))
	if err != nil {
		t.Fatalf("new simulated: %v", err)
	}
	const runs = 5000
	failures := 0
	for i := 0; i < runs; i++ {
		if errors.Is(sim.Confirm(context.Background()), ErrRejected) {
			failures++
		}
	}
	ratio := float64(failures) / runs
	if ratio < 0.15 || ratio > 0.25 {
		t.Fatalf("failure ratio = %.3f, want about %.2f", ratio, DefaultFailureRate)
	}
}

func TestSimulatedHonoursCancellation(t *testing.T) {
	sim, err := NewSimulated(Settings{MinDelay: time.Hour, MaxDelay: 2 * time.Hour})
	if err != nil {
		t.Fatalf("new simulated: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Confirm(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("confirm = %v, want context.Canceled", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{name: "defaults", settings: DefaultSettings()},
		{name: "zero", settings: Settings{}},
		{name: "negative min", settings: Settings{MinDelay: -time.Second}, wantErr: true},
		{name: "inverted window", settings: Settings{MinDelay: 2 * time.Second, MaxDelay: time.Second}, wantErr: true},
		{name: "rate above one", settings: Settings{FailureRate: 1.5}, wantErr: true},
		{name: "negative rate", settings: Settings{FailureRate: -0.1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFixed(t *testing.T) {
	if err := Fixed(nil).Confirm(context.Background()); err != nil {
		t.Fatalf("Fixed(nil) = %v", err)
	}
	if err := Fixed(ErrRejected).Confirm(context.Background()); !errors.Is(err, ErrRejected) {
		t.Fatalf("Fixed(ErrRejected) = %v", err)
	}
}
