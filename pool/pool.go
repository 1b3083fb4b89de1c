// Package pool provides the scheduler's worker-slot admission pools.
//
// A slot is a fungible ticket, not a reusable object: unlike a pool of
// worker values, a scheduler only ever needs to know "is there room to run
// one more fiber right now", so the pool interface here is Acquire/Release
// rather than Get/Put.
package pool

import "context"

// SlotPool admits fibers onto the scheduler's run loop. Acquire blocks
// until a slot is available or ctx is done; Release returns the slot.
type SlotPool interface {
	// Acquire blocks until a slot is available or ctx is done.
	Acquire(ctx context.Context) error

	// Release returns a previously-acquired slot to the pool.
	Release()

	// Cap reports the pool's capacity, or 0 if it does not bound admission.
	Cap() int
}
