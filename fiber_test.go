package strand

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFuture_GetReturnsFiberResult(t *testing.T) {
	sched, err := NewScheduler()
	require.NoError(t, err)

	f := sched.Spawn(context.Background(), "worker", func(ctx context.Context) (any, error) {
		return 42, nil
	})
	fu := ToFuture(f)

	v, err := fu.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.True(t, fu.IsDone())
}

func TestFuture_GetWithTimeout_TimesOutBeforeFiberFinishes(t *testing.T) {
	sched, err := NewScheduler()
	require.NoError(t, err)

	f := sched.Spawn(context.Background(), "slow", func(ctx context.Context) (any, error) {
		if err := Sleep(ctx, 200*time.Millisecond); err != nil {
			return nil, err
		}
		return "done", nil
	})
	fu := ToFuture(f)

	_, err = fu.GetWithTimeout(context.Background(), 10*time.Millisecond)
	require.Error(t, err, "expected GetWithTimeout to time out before the fiber completes")
	require.False(t, fu.IsDone(), "fiber should still be running past the short deadline")

	// Drain so the scheduler's underlying goroutine doesn't leak past the test.
	_, _ = fu.Get(context.Background())
}

func TestFuture_GetWithTimeout_SucceedsWhenFiberIsFaster(t *testing.T) {
	sched, err := NewScheduler()
	require.NoError(t, err)

	f := sched.Spawn(context.Background(), "fast", func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	fu := ToFuture(f)

	v, err := fu.GetWithTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}

func TestFuture_IsDoneAndCancelRoundTrip(t *testing.T) {
	sched, err := NewScheduler()
	require.NoError(t, err)

	started := make(chan struct{})
	f := sched.Spawn(context.Background(), "interruptible", func(ctx context.Context) (any, error) {
		close(started)
		if err := Sleep(ctx, time.Minute); err != nil {
			return nil, err
		}
		return nil, nil
	})
	fu := ToFuture(f)
	<-started
	require.False(t, fu.IsDone(), "fiber should still be alive before Cancel")

	fu.Cancel()

	_, err = fu.Get(context.Background())
	require.Error(t, err, "expected interrupted fiber to surface an error via Get")
	require.True(t, fu.IsDone(), "fiber should be terminated once Get observes the cancellation")
}
