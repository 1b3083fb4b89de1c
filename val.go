package strand

import (
	"context"
	"sync"
)

// Val is a single-assignment dataflow cell: observe parks until deliver.
// The zero value is a usable, thunk-less Val; use NewValFunc to wrap a
// deferred computation instead.
type Val[T any] struct {
	mu        sync.Mutex
	delivered bool
	value     T
	cause     error
	waiters   []chan struct{}

	thunk     func(context.Context) (T, error)
	sched     *Scheduler
	thunkOnce sync.Once
}

// NewVal constructs an empty Val with no deferred computation.
func NewVal[T any]() *Val[T] { return &Val[T]{} }

// NewValFunc returns a Val wrapping a deferred computation: the first
// Observe call spawns it on sched and delivers its result (value or
// cause); later Observe calls just park for delivery like any other Val.
func NewValFunc[T any](sched *Scheduler, thunk func(context.Context) (T, error)) *Val[T] {
	return &Val[T]{thunk: thunk, sched: sched}
}

// Deliver atomically transitions the Val from undelivered to delivered; any
// later Deliver call is a silent no-op. All current and future Observe
// calls return this value.
func (v *Val[T]) Deliver(value T, cause error) {
	v.mu.Lock()
	if v.delivered {
		v.mu.Unlock()
		return
	}
	v.delivered = true
	v.value, v.cause = value, cause
	waiters := v.waiters
	v.waiters = nil
	v.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
}

// IsDelivered is a non-blocking state query.
func (v *Val[T]) IsDelivered() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.delivered
}

// Observe returns the delivered value (or raises its cause), parking
// (releasing the calling fiber's scheduler slot) until delivery or ctx is
// done. If this Val wraps a deferred computation, the first Observe
// triggers it on a fresh fiber of v's scheduler.
func (v *Val[T]) Observe(ctx context.Context) (T, error) {
	if v.thunk != nil {
		v.thunkOnce.Do(func() {
			v.sched.Spawn(ctx, "val-thunk", func(fctx context.Context) (any, error) {
				value, err := v.thunk(fctx)
				v.Deliver(value, err)
				return value, err
			})
		})
	}

	v.mu.Lock()
	if v.delivered {
		value, cause := v.value, v.cause
		v.mu.Unlock()
		return value, cause
	}
	w := make(chan struct{})
	v.waiters = append(v.waiters, w)
	v.mu.Unlock()

	release, reacquire := slotHooks(ctx)
	release()
	select {
	case <-w:
		reacquire()
	case <-ctx.Done():
		reacquire()
		var zero T
		return zero, &CancelCause{Op: "val.observe"}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.cause
}
