package strand

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// OpKind distinguishes a Select descriptor's direction.
type OpKind int

const (
	OpReceive OpKind = iota
	OpSend
)

// selectable is the non-generic face a Channel[T] exposes to Select so a
// single call can operate across heterogeneous element types.
type selectable interface {
	peekReady(kind OpKind) bool
	commitSend(v any) (bool, error)
	commitReceive() (any, bool, error)
	register(tok *selectToken, idx int, op Op) selectNode
}

// selectNode lets Select remove a parked wait-node that lost the race,
// once committed to a winner.
type selectNode interface {
	cancel()
}

// Op describes one Select descriptor. Build with ReceiveOp/SendOp.
type Op struct {
	kind    OpKind
	chanRef selectable
	sendVal any
}

// ReceiveOp builds a receive descriptor over ch.
func ReceiveOp[T any](ch *Channel[T]) Op {
	return Op{kind: OpReceive, chanRef: ch}
}

// SendOp builds a descriptor that sends v on ch.
func SendOp[T any](ch *Channel[T], v T) Op {
	return Op{kind: OpSend, chanRef: ch, sendVal: v}
}

// Outcome is the resolved result of a Select call: the winning descriptor's
// index, and the message received (zero/nil for a send or a timeout).
type Outcome struct {
	Index    int
	Message  any
	TimedOut bool
}

const (
	tokenOpen      int32 = -1
	tokenTimeout   int32 = -2
	tokenCancelled int32 = -3
)

// selectToken is the shared CAS gate a parked select claims exactly once,
// across every channel it registered a wait-node on.
type selectToken struct {
	claimed atomic.Int32
	done    chan struct{}
	winner  int
	message any
	err     error
}

func newSelectToken() *selectToken {
	t := &selectToken{done: make(chan struct{})}
	t.claimed.Store(tokenOpen)
	return t
}

// tryWin attempts to claim the token for descriptor idx. A waiter whose
// tryWin fails has lost the race to some other descriptor (or to a
// timeout/cancellation) and must be treated as if it were never matched.
func (t *selectToken) tryWin(idx int) bool {
	return t.claimed.CompareAndSwap(tokenOpen, int32(idx))
}

func (t *selectToken) finish(message any, err error) {
	t.winner = int(t.claimed.Load())
	t.message = message
	t.err = err
	close(t.done)
}

// Select performs exactly one of ops atomically, or none on timeout or
// cancellation. With WithPriority, the first ready operation in list order
// wins; otherwise Select draws uniformly among the operations that are
// ready (or, while parked, among whichever channel matches first).
func Select(ctx context.Context, ops []Op, opts ...SelectOption) (Outcome, error) {
	if len(ops) == 0 {
		return Outcome{}, ErrNoOperations
	}
	var so selectOptions
	for _, opt := range opts {
		opt(&so)
	}

	if outcome, err, handled := tryImmediate(ops, so.priority); handled {
		return outcome, err
	}

	tok := newSelectToken()
	nodes := make([]selectNode, len(ops))
	for i, op := range ops {
		nodes[i] = op.chanRef.register(tok, i, op)
	}
	defer func() {
		for _, n := range nodes {
			n.cancel()
		}
	}()

	var timeoutC <-chan time.Time
	if so.hasTimeout {
		timer := time.NewTimer(time.Duration(so.timeout))
		defer timer.Stop()
		timeoutC = timer.C
	}

	release, reacquire := slotHooks(ctx)
	release()
	defer reacquire()

	select {
	case <-tok.done:
		return Outcome{Index: tok.winner, Message: tok.message}, tok.err

	case <-timeoutC:
		if tok.claimed.CompareAndSwap(tokenOpen, tokenTimeout) {
			close(tok.done)
			return Outcome{TimedOut: true}, &TimeoutError{Op: "select"}
		}
		<-tok.done
		return Outcome{Index: tok.winner, Message: tok.message}, tok.err

	case <-ctx.Done():
		if tok.claimed.CompareAndSwap(tokenOpen, tokenCancelled) {
			close(tok.done)
			return Outcome{}, &CancelCause{Op: "select"}
		}
		<-tok.done
		return Outcome{Index: tok.winner, Message: tok.message}, tok.err
	}
}

// tryImmediate implements steps 1-2 of the protocol: a non-blocking
// readiness pass followed by committing exactly one ready candidate.
// handled is false if no candidate could be committed, meaning Select
// must fall through to the park path.
func tryImmediate(ops []Op, priority bool) (outcome Outcome, err error, handled bool) {
	ready := make([]int, 0, len(ops))
	for i, op := range ops {
		if op.chanRef.peekReady(op.kind) {
			ready = append(ready, i)
			if priority {
				break
			}
		}
	}

	for len(ready) > 0 {
		var idx int
		if priority {
			idx, ready = ready[0], ready[1:]
		} else {
			r := rand.IntN(len(ready))
			idx, ready = ready[r], append(ready[:r], ready[r+1:]...)
		}

		op := ops[idx]
		if op.kind == OpSend {
			ok, sendErr := op.chanRef.commitSend(op.sendVal)
			if ok {
				return Outcome{Index: idx}, sendErr, true
			}
			continue
		}
		v, ok, recvErr := op.chanRef.commitReceive()
		if ok {
			return Outcome{Index: idx, Message: v}, recvErr, true
		}
	}
	return Outcome{}, nil, false
}
