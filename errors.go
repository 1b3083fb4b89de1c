package strand

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Namespace prefixes every sentinel error so callers can tell at a glance
// which subsystem raised it.
const Namespace = "strand"

var (
	// ErrChannelClosed is raised by send on a closed channel under
	// policies that surface closure rather than silently dropping it.
	// Receive on a closed, drained channel returns the close cause instead.
	ErrChannelClosed = errors.New(Namespace + ": channel closed")

	// ErrOverflow is raised by send under the throw policy on a full
	// bounded channel.
	ErrOverflow = errors.New(Namespace + ": channel overflow")

	// ErrTimeout is raised when a bounded operation exceeds its deadline.
	ErrTimeout = errors.New(Namespace + ": operation timed out")

	// ErrCancelled is raised when a strand is interrupted at a suspension
	// point.
	ErrCancelled = errors.New(Namespace + ": strand cancelled")

	// ErrInvalidState covers misuse: an invalid Scheduler or Channel
	// configuration, or a Select send whose value does not match the
	// channel's element type.
	ErrInvalidState = errors.New(Namespace + ": invalid state")

	// ErrNoOperations is raised by Select when given an empty operation list.
	ErrNoOperations = errors.New(Namespace + ": select requires at least one operation")
)

// ChannelClosedError wraps the cause supplied to Close, if any, so callers
// can recover it with errors.As while errors.Is(err, ErrChannelClosed)
// still succeeds.
type ChannelClosedError struct {
	Cause error
}

func (e *ChannelClosedError) Error() string {
	if e.Cause == nil {
		return ErrChannelClosed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrChannelClosed, e.Cause)
}

func (e *ChannelClosedError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrChannelClosed
}

func (e *ChannelClosedError) Is(target error) bool { return target == ErrChannelClosed }

// OverflowError reports which policy caused the overflow to surface.
type OverflowError struct {
	Policy Overflow
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: policy=%s", ErrOverflow, e.Policy)
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }

// TimeoutError carries the suspension point that exceeded its deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	if e.Op == "" {
		return ErrTimeout.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTimeout, e.Op)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// CancelCause reports the suspension point that observed the interrupt.
type CancelCause struct {
	Op string
}

func (e *CancelCause) Error() string {
	if e.Op == "" {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCancelled, e.Op)
}

func (e *CancelCause) Unwrap() error { return ErrCancelled }

// unwrapCause peels execution-wrapper and runtime-wrapper layers off a
// terminated strand's failure cause, at most twice, per the join contract.
func unwrapCause(err error) error {
	for i := 0; i < 2; i++ {
		u := errors.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return err
}

// joinCauses aggregates multiple join failures (e.g. from JoinAll) into a
// single error.
func joinCauses(causes ...error) error {
	return errorc.Join(causes...)
}
