package common

import (
	"context"
	"time"
)

// Clock abstracts pacing delays so callers can disable them in tests.
type Clock interface {
	// Sleep blocks for d or until ctx is cancelled, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// NopClock returns immediately without sleeping.
type NopClock struct{}

func (NopClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

var (
	_ Clock = RealClock{}
	_ Clock = NopClock{}
)
