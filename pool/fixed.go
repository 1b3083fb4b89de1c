package pool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Fixed is a SlotPool bounded to a fixed number of concurrently-held slots.
type Fixed struct {
	sem *semaphore.Weighted
	cap int
}

// NewFixed returns a SlotPool that admits at most capacity fibers at once.
// capacity must be > 0.
func NewFixed(capacity uint) *Fixed {
	return &Fixed{sem: semaphore.NewWeighted(int64(capacity)), cap: int(capacity)}
}

func (p *Fixed) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

func (p *Fixed) Release() {
	p.sem.Release(1)
}

func (p *Fixed) Cap() int { return p.cap }
