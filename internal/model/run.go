package model

import "time"

// BatchRun records one reconciliation pass over a year's commitments.
// Balances are always recomputed from the live portal; runs are history,
// not a cache.
type BatchRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Year       int
	Succeeded  int
	Failed     int
}

// Duration returns how long the run took.
func (r BatchRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Processed returns the total number of commitments attempted.
func (r BatchRun) Processed() int {
	return r.Succeeded + r.Failed
}
