package strand

import (
	"context"
	"sync/atomic"
)

// Port is anything a Topic can fan a message out to; *Channel[T] satisfies
// this already.
type Port[T any] interface {
	Send(ctx context.Context, v T) error
}

// Topic broadcasts each Send to the snapshot of subscribers observed at
// send time. The subscriber set is copy-on-write so a send never holds a
// lock while delivering to its subscribers.
type Topic[T any] struct {
	subs atomic.Pointer[[]Port[T]]
}

// NewTopic constructs an empty Topic.
func NewTopic[T any]() *Topic[T] {
	t := &Topic[T]{}
	empty := make([]Port[T], 0)
	t.subs.Store(&empty)
	return t
}

// Subscribe adds p to the subscriber set.
func (t *Topic[T]) Subscribe(p Port[T]) {
	for {
		old := t.subs.Load()
		next := make([]Port[T], len(*old), len(*old)+1)
		copy(next, *old)
		next = append(next, p)
		if t.subs.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Unsubscribe removes p from the subscriber set, if present.
func (t *Topic[T]) Unsubscribe(p Port[T]) {
	for {
		old := t.subs.Load()
		next := make([]Port[T], 0, len(*old))
		for _, s := range *old {
			if s != p {
				next = append(next, s)
			}
		}
		if t.subs.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Send delivers v to every currently-subscribed port, per that port's own
// overflow policy. A failure on one subscriber does not prevent delivery
// to the rest; Send only fails if every subscriber failed.
func (t *Topic[T]) Send(ctx context.Context, v T) error {
	subs := *t.subs.Load()
	if len(subs) == 0 {
		return nil
	}
	var lastErr error
	failures := 0
	for _, s := range subs {
		if err := s.Send(ctx, v); err != nil {
			lastErr = err
			failures++
		}
	}
	if failures == len(subs) {
		return lastErr
	}
	return nil
}
