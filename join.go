package strand

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Join parks the caller on s's termination event, returning s's result or
// its cause, unwrapped of at most two wrapper layers (execution-wrapper,
// runtime-wrapper) per the join contract.
func Join(ctx context.Context, s Strand) (any, error) {
	select {
	case <-s.Done():
	case <-ctx.Done():
		return nil, &TimeoutError{Op: "join"}
	}
	value, cause, _ := s.Outcome()
	if cause != nil {
		return nil, unwrapCause(cause)
	}
	return value, nil
}

// JoinAll joins strands sequentially under a single deadline budget: the
// budget is decremented by actual elapsed time between successive joins,
// and raises ErrTimeout if exhausted before all strands have terminated.
func JoinAll(ctx context.Context, strands []Strand, opts ...JoinOption) ([]any, error) {
	var jo joinOptions
	for _, opt := range opts {
		opt(&jo)
	}

	deadlineCtx := ctx
	if jo.hasTimeout {
		var cancel context.CancelFunc
		deadlineCtx, cancel = context.WithTimeout(ctx, time.Duration(jo.timeout))
		defer cancel()
	}

	results := make([]any, len(strands))
	for i, s := range strands {
		v, err := Join(deadlineCtx, s)
		if err != nil {
			return results, err
		}
		results[i] = v
	}
	return results, nil
}

// JoinConcurrent joins every strand concurrently under one shared
// deadline, aggregating every failure (rather than stopping at the first)
// with errorc when more than one strand fails.
func JoinConcurrent(ctx context.Context, strands []Strand, opts ...JoinOption) ([]any, error) {
	var jo joinOptions
	for _, opt := range opts {
		opt(&jo)
	}

	runCtx := ctx
	if jo.hasTimeout {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(jo.timeout))
		defer cancel()
	}

	results := make([]any, len(strands))
	var g errgroup.Group

	var mu sync.Mutex
	var causes []error

	for i, s := range strands {
		i, s := i, s
		g.Go(func() error {
			v, err := Join(runCtx, s)
			if err != nil {
				mu.Lock()
				causes = append(causes, err)
				mu.Unlock()
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if len(causes) > 1 {
			return results, joinCauses(causes...)
		}
		return results, err
	}
	return results, nil
}
