package pool

import "context"

// Dynamic is an uncapped SlotPool: Acquire never blocks (one slot is
// created per concurrently-active fiber and reclaimed on Release).
type Dynamic struct{}

// NewDynamic returns an uncapped SlotPool.
func NewDynamic() *Dynamic { return &Dynamic{} }

func (p *Dynamic) Acquire(ctx context.Context) error {
	return ctx.Err()
}

func (p *Dynamic) Release() {}

func (p *Dynamic) Cap() int { return 0 }
