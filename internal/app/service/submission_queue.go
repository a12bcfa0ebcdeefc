package service

import (
	"context"
	"time"

	"orbix_wallet/internal/pkg/metrics"
)

// DefaultSubmissionDelay is the pause between two consecutive wallet submissions.
const DefaultSubmissionDelay = time.Second

// SubmitFunc hands one transaction to the wallet and returns its hash.
type SubmitFunc func(ctx context.Context) (string, error)

// SubmissionQueue serializes transaction submissions for the process: at most one
// is in flight, and each starts no earlier than delay after the previous one ended.
// Every orchestrator shares one queue so per-account nonces stay ordered.
type SubmissionQueue struct {
	slot     chan struct{}
	delay    time.Duration
	lastDone time.Time // guarded by slot
}

// NewSubmissionQueue creates a queue. A negative delay is treated as zero.
func NewSubmissionQueue(delay time.Duration) *SubmissionQueue {
	if delay < 0 {
		delay = 0
	}
	return &SubmissionQueue{slot: make(chan struct{}, 1), delay: delay}
}

// Delay returns the configured inter-submission delay.
func (q *SubmissionQueue) Delay() time.Duration {
	return q.delay
}

// Submit waits for its slot and runs fn. If ctx ends while waiting, either for
// another submission to finish or for the delay, fn is not run.
func (q *SubmissionQueue) Submit(ctx context.Context, fn SubmitFunc) (string, error) {
	start := time.Now()
	select {
	case q.slot <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-q.slot }()

	if !q.lastDone.IsZero() {
		if wait := q.delay - time.Since(q.lastDone); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	metrics.SubmissionWait.Observe(time.Since(start).Seconds())

	defer func() { q.lastDone = time.Now() }()
	return fn(ctx)
}
