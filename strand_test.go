package strand

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOfThread_JoinReturnsResult(t *testing.T) {
	s := OfThread("worker", func() {
		time.Sleep(10 * time.Millisecond)
	})
	require.True(t, s.IsAlive(), "expected thread strand to be alive immediately after start")

	_, err := Join(context.Background(), s)
	require.NoError(t, err)
	require.False(t, s.IsAlive(), "expected thread strand to be terminated after Join")
}

func TestOfThread_PanicBecomesCause(t *testing.T) {
	s := OfThread("panicker", func() {
		panic("boom")
	})
	_, err := Join(context.Background(), s)
	require.Error(t, err, "expected panic to surface as a join error")
}

func TestCurrent_NilOutsideFiber(t *testing.T) {
	require.Nil(t, Current(context.Background()))
}

func TestCurrent_ResolvesInsideFiberBody(t *testing.T) {
	sched, err := NewScheduler()
	require.NoError(t, err)

	done := make(chan struct{})
	var sawSelf bool
	f := sched.Spawn(context.Background(), "self-aware", func(ctx context.Context) (any, error) {
		defer close(done)
		sawSelf = Current(ctx) != nil
		return nil, nil
	})
	<-done
	require.True(t, sawSelf, "expected Current(ctx) to resolve inside the fiber body")

	_, err = Join(context.Background(), f)
	require.NoError(t, err)
}

func TestSleep_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Second)
	var cc *CancelCause
	require.ErrorAs(t, err, &cc)
}

func TestSleep_ReturnsAfterDuration(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 20*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
