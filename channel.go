package strand

import (
	"context"
	"sync"

	"github.com/ravhalden/strand/metrics"
)

// Channel is a typed FIFO conduit with configurable capacity and overflow
// policy. The zero value is not usable; construct with NewChannel.
type Channel[T any] struct {
	mu     sync.Mutex
	cfg    ChannelConfig
	buf    []T
	closed bool
	cause  error

	producers []*sendWaiter[T]
	consumers []*recvWaiter[T]

	metrics MetricsProvider
}

type sendWaiter[T any] struct {
	value T
	done  chan error
	tok   *selectToken // non-nil when registered by Select
	idx   int
}

type recvWaiter[T any] struct {
	done chan recvResult[T]
	tok  *selectToken
	idx  int
}

type recvResult[T any] struct {
	value T
	err   error
}

// NewChannel constructs a Channel[T] with the given options. Defaults to a
// rendezvous channel (capacity 0, single consumer, block overflow).
func NewChannel[T any](opts ...ChannelOption) (*Channel[T], error) {
	cfg := defaultChannelConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateChannelConfig(&cfg); err != nil {
		return nil, err
	}
	return &Channel[T]{cfg: cfg, metrics: metrics.NewNoopProvider()}, nil
}

func (c *Channel[T]) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel[T]) closedErr() error {
	return c.cause
}

// Send transfers v to ch, applying the channel's overflow policy whenever
// there is no room: bounded-and-full, or rendezvous (capacity 0) with no
// waiting consumer. Under OverflowBlock it parks (releasing the calling
// fiber's scheduler slot) until matched or ctx is done; the other
// policies never park.
func (c *Channel[T]) Send(ctx context.Context, v T) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if c.cfg.Overflow == OverflowDrop {
			return nil
		}
		return &ChannelClosedError{Cause: c.cause}
	}

	for len(c.consumers) > 0 {
		w := c.consumers[0]
		c.consumers = c.consumers[1:]
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		c.mu.Unlock()
		w.done <- recvResult[T]{value: v}
		if w.tok != nil {
			w.tok.finish(v, nil)
		}
		return nil
	}

	if c.cfg.Capacity < 0 || (c.cfg.Capacity > 0 && len(c.buf) < c.cfg.Capacity) {
		c.buf = append(c.buf, v)
		c.mu.Unlock()
		return nil
	}

	if c.cfg.Capacity == 0 {
		switch c.cfg.Overflow {
		case OverflowThrow:
			c.mu.Unlock()
			return &OverflowError{Policy: OverflowThrow}
		case OverflowDrop:
			c.mu.Unlock()
			return nil
		case OverflowDisplace:
			// No buffer to displace into; a rendezvous channel has nothing
			// "oldest" to discard, so displace degrades to drop.
			c.mu.Unlock()
			return nil
		default: // OverflowBlock
			return c.parkProducer(ctx, v)
		}
	}

	switch c.cfg.Overflow {
	case OverflowThrow:
		c.mu.Unlock()
		return &OverflowError{Policy: OverflowThrow}
	case OverflowDrop:
		c.mu.Unlock()
		return nil
	case OverflowDisplace:
		c.buf = c.buf[1:]
		c.buf = append(c.buf, v)
		c.mu.Unlock()
		return nil
	default: // OverflowBlock
		return c.parkProducer(ctx, v)
	}
}

// parkProducer appends a waiter and blocks until it is matched, the
// channel closes, or ctx is done. Callers must hold c.mu; parkProducer
// releases it.
func (c *Channel[T]) parkProducer(ctx context.Context, v T) error {
	w := &sendWaiter[T]{value: v, done: make(chan error, 1)}
	c.producers = append(c.producers, w)
	c.mu.Unlock()

	release, reacquire := slotHooks(ctx)
	release()
	defer reacquire()

	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		c.removeProducer(w)
		return &CancelCause{Op: "send"}
	}
}

func (c *Channel[T]) removeProducer(w *sendWaiter[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.producers {
		if p == w {
			c.producers = append(c.producers[:i], c.producers[i+1:]...)
			return
		}
	}
	select {
	case <-w.done:
	default:
	}
}

func (c *Channel[T]) removeConsumer(w *recvWaiter[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.consumers {
		if p == w {
			c.consumers = append(c.consumers[:i], c.consumers[i+1:]...)
			return
		}
	}
	select {
	case <-w.done:
	default:
	}
}

// Receive pops the oldest buffered or hand-off message, parking (releasing
// the calling fiber's scheduler slot) if the channel is empty and open.
func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	c.mu.Lock()

	if len(c.buf) > 0 {
		v := c.buf[0]
		c.buf = c.buf[1:]
		for len(c.producers) > 0 {
			w := c.producers[0]
			c.producers = c.producers[1:]
			if w.tok != nil && !w.tok.tryWin(w.idx) {
				continue
			}
			c.buf = append(c.buf, w.value)
			c.mu.Unlock()
			w.done <- nil
			if w.tok != nil {
				w.tok.finish(nil, nil)
			}
			return v, nil
		}
		c.mu.Unlock()
		return v, nil
	}

	for len(c.producers) > 0 {
		w := c.producers[0]
		c.producers = c.producers[1:]
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		c.mu.Unlock()
		w.done <- nil
		if w.tok != nil {
			w.tok.finish(nil, nil)
		}
		return w.value, nil
	}

	if c.closed {
		c.mu.Unlock()
		return zero, c.closedErr()
	}

	w := &recvWaiter[T]{done: make(chan recvResult[T], 1)}
	c.consumers = append(c.consumers, w)
	c.mu.Unlock()

	release, reacquire := slotHooks(ctx)
	release()
	defer reacquire()

	select {
	case r := <-w.done:
		return r.value, r.err
	case <-ctx.Done():
		c.removeConsumer(w)
		return zero, &CancelCause{Op: "receive"}
	}
}

// TrySend is the non-parking variant of Send: it never blocks, returning
// false only under OverflowBlock when the channel had no room. Throw
// reports the lack of room as an error instead; drop and displace both
// report success while discarding a value (the incoming one under drop,
// the oldest buffered one under displace, or — on a rendezvous channel,
// which has no buffer — the incoming one under displace too).
func (c *Channel[T]) TrySend(v T) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if c.cfg.Overflow == OverflowDrop {
			return true, nil
		}
		return false, &ChannelClosedError{Cause: c.cause}
	}

	for len(c.consumers) > 0 {
		w := c.consumers[0]
		c.consumers = c.consumers[1:]
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		c.mu.Unlock()
		w.done <- recvResult[T]{value: v}
		if w.tok != nil {
			w.tok.finish(v, nil)
		}
		return true, nil
	}

	if c.cfg.Capacity < 0 || (c.cfg.Capacity > 0 && len(c.buf) < c.cfg.Capacity) {
		c.buf = append(c.buf, v)
		c.mu.Unlock()
		return true, nil
	}

	if c.cfg.Capacity == 0 {
		switch c.cfg.Overflow {
		case OverflowDisplace, OverflowDrop:
			// No buffer to displace into; a rendezvous channel has nothing
			// "oldest" to discard, so displace degrades to drop. Either way
			// the send is discarded, and TrySend reports success.
			c.mu.Unlock()
			return true, nil
		case OverflowThrow:
			c.mu.Unlock()
			return false, &OverflowError{Policy: OverflowThrow}
		default: // OverflowBlock
			c.mu.Unlock()
			return false, nil
		}
	}

	switch c.cfg.Overflow {
	case OverflowDisplace:
		c.buf = c.buf[1:]
		c.buf = append(c.buf, v)
		c.mu.Unlock()
		return true, nil
	case OverflowThrow:
		c.mu.Unlock()
		return false, &OverflowError{Policy: OverflowThrow}
	case OverflowDrop:
		c.mu.Unlock()
		return true, nil
	default:
		c.mu.Unlock()
		return false, nil
	}
}

// TryReceive is the non-parking variant of Receive: ok is false if the
// channel was empty and open.
func (c *Channel[T]) TryReceive() (value T, ok bool, err error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buf) > 0 {
		v := c.buf[0]
		c.buf = c.buf[1:]
		for len(c.producers) > 0 {
			w := c.producers[0]
			c.producers = c.producers[1:]
			if w.tok != nil && !w.tok.tryWin(w.idx) {
				continue
			}
			c.buf = append(c.buf, w.value)
			w.done <- nil
			if w.tok != nil {
				w.tok.finish(nil, nil)
			}
			break
		}
		return v, true, nil
	}

	for len(c.producers) > 0 {
		w := c.producers[0]
		c.producers = c.producers[1:]
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		val := w.value
		w.done <- nil
		if w.tok != nil {
			w.tok.finish(nil, nil)
		}
		return val, true, nil
	}

	if c.closed {
		return zero, true, c.closedErr()
	}
	return zero, false, nil
}

// Close marks the channel closed with an optional cause, waking every
// parked producer with ErrChannelClosed and every parked consumer with the
// terminal signal. Further sends are rejected (or dropped, under the drop
// policy); receives continue to drain any buffered elements first.
func (c *Channel[T]) Close(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cause = cause
	producers := c.producers
	c.producers = nil
	consumers := c.consumers
	c.consumers = nil
	c.mu.Unlock()

	for _, w := range producers {
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		closeErr := error(&ChannelClosedError{Cause: cause})
		w.done <- closeErr
		if w.tok != nil {
			w.tok.finish(nil, closeErr)
		}
	}
	for _, w := range consumers {
		if w.tok != nil && !w.tok.tryWin(w.idx) {
			continue
		}
		var zero T
		w.done <- recvResult[T]{value: zero, err: cause}
		if w.tok != nil {
			w.tok.finish(zero, cause)
		}
	}
}

// --- Select integration --------------------------------------------------

func (c *Channel[T]) peekReady(kind OpKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == OpReceive {
		return len(c.buf) > 0 || len(c.producers) > 0 || c.closed
	}
	if c.closed {
		return true
	}
	if len(c.consumers) > 0 {
		return true
	}
	if c.cfg.Capacity < 0 || (c.cfg.Capacity > 0 && len(c.buf) < c.cfg.Capacity) {
		return true
	}
	return c.cfg.Overflow != OverflowBlock
}

func (c *Channel[T]) commitSend(v any) (bool, error) {
	tv, ok := v.(T)
	if !ok {
		return false, ErrInvalidState
	}
	return c.TrySend(tv)
}

func (c *Channel[T]) commitReceive() (any, bool, error) {
	return c.TryReceive()
}

func (c *Channel[T]) register(tok *selectToken, idx int, op Op) selectNode {
	if op.kind == OpReceive {
		c.mu.Lock()
		w := &recvWaiter[T]{done: make(chan recvResult[T], 1), tok: tok, idx: idx}
		c.consumers = append(c.consumers, w)
		c.mu.Unlock()
		return &chanRecvSelectNode[T]{ch: c, w: w}
	}
	tv, _ := op.sendVal.(T)
	c.mu.Lock()
	w := &sendWaiter[T]{value: tv, done: make(chan error, 1), tok: tok, idx: idx}
	c.producers = append(c.producers, w)
	c.mu.Unlock()
	return &chanSendSelectNode[T]{ch: c, w: w}
}

type chanRecvSelectNode[T any] struct {
	ch *Channel[T]
	w  *recvWaiter[T]
}

func (n *chanRecvSelectNode[T]) cancel() { n.ch.removeConsumer(n.w) }

type chanSendSelectNode[T any] struct {
	ch *Channel[T]
	w  *sendWaiter[T]
}

func (n *chanSendSelectNode[T]) cancel() { n.ch.removeProducer(n.w) }
