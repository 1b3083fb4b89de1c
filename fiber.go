package strand

import (
	"context"
	"fmt"
	"time"
)

// Fiber is a cooperatively scheduled Strand multiplexed onto a Scheduler's
// worker-slot pool. A Fiber may be pinned (must resume on the same
// worker) when its body holds a resource that forbids migration; this
// implementation has no work-stealing deque to migrate off of (goroutines
// already migrate freely across OS threads), so Pinned exists only as an
// advisory flag a body can read back via Current. Spawn has no option to
// set it, so Pinned always reports false.
type Fiber struct {
	*termination
	name      string
	scheduler *Scheduler
	pinned    bool
	ctx       context.Context
	cancel    context.CancelCauseFunc
}

// Interrupt requests cancellation of f at its next suspension point. Per
// spec this is edge-triggered (a consumed interrupt clears the flag);
// Go's context cancellation is level-triggered instead (Done stays closed
// once cancelled), so in practice a fiber observes at most one effective
// interrupt and is expected to wind down rather than resume normal
// suspension afterward — the idiomatic mapping for a runtime where
// cancellation is a property of the context tree, not a one-shot flag.
func (f *Fiber) Interrupt() {
	f.cancel(&CancelCause{Op: "interrupt"})
}

// Pinned reports whether f's pinned hint is set.
func (f *Fiber) Pinned() bool { return f.pinned }

func (f *Fiber) Name() string { return f.name }

// runBody executes body, converting a panic into the fiber's failure
// cause rather than crashing the worker goroutine.
func (f *Fiber) runBody(body func(context.Context) (any, error)) (value any, cause error) {
	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("%s: fiber panic: %v", Namespace, r)
		}
	}()
	return body(f.ctx)
}

// Future is a handle to a spawned Fiber's eventual outcome.
type Future struct {
	fiber *Fiber
}

// ToFuture wraps f as a Future.
func ToFuture(f *Fiber) *Future { return &Future{fiber: f} }

// IsDone reports whether the underlying fiber has terminated.
func (fu *Future) IsDone() bool { return !fu.fiber.IsAlive() }

// Cancel interrupts the underlying fiber.
func (fu *Future) Cancel() { fu.fiber.Interrupt() }

// Get blocks until the fiber terminates, returning its result or cause.
func (fu *Future) Get(ctx context.Context) (any, error) {
	return Join(ctx, fu.fiber)
}

// GetWithTimeout blocks until the fiber terminates or d elapses.
func (fu *Future) GetWithTimeout(ctx context.Context, d time.Duration) (any, error) {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Join(tctx, fu.fiber)
}

// slotHooks returns the release/reacquire pair a suspension point uses to
// give up its scheduler slot while parked. A ctx not carrying a Fiber
// (e.g. an OfThread strand, or a program's top-level goroutine using a
// channel directly) has no slot to give up.
func slotHooks(ctx context.Context) (release func(), reacquire func()) {
	f := Current(ctx)
	if f == nil {
		return func() {}, func() {}
	}
	return func() { f.scheduler.slots.Release() },
		func() { _ = f.scheduler.slots.Acquire(context.Background()) }
}
