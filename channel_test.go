package strand

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannel_RendezvousHandoff(t *testing.T) {
	ch, err := NewChannel[string]()
	require.NoError(t, err)
	sched, err := NewScheduler()
	require.NoError(t, err)
	ctx := context.Background()

	a := sched.Spawn(ctx, "sender", func(ctx context.Context) (any, error) {
		return nil, ch.Send(ctx, "x")
	})
	var got string
	b := sched.Spawn(ctx, "receiver", func(ctx context.Context) (any, error) {
		v, err := ch.Receive(ctx)
		got = v
		return v, err
	})

	_, err = Join(ctx, a)
	require.NoError(t, err)
	_, err = Join(ctx, b)
	require.NoError(t, err)
	require.Equal(t, "x", got)
}

func TestChannel_RendezvousNeverBuffers(t *testing.T) {
	ch, err := NewChannel[int]()
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err)
	require.False(t, ok, "TrySend on a rendezvous channel with no waiting consumer must fail")
	require.Empty(t, ch.buf, "rendezvous channel observed with non-empty buffer")
}

func TestChannel_DisplaceOverflow(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(2), WithOverflow(OverflowDisplace))
	require.NoError(t, err)

	for _, v := range []int{1, 2, 3} {
		ok, err := ch.TrySend(v)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ctx := context.Background()
	first, err := ch.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, first)
	second, err := ch.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, second)
}

func TestChannel_ThrowOverflow(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(1), WithOverflow(OverflowThrow))
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = ch.TrySend(2)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestChannel_DropOverflow(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(1), WithOverflow(OverflowDrop))
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ch.TrySend(2)
	require.NoError(t, err, "dropped send should report success with no error")
	require.True(t, ok)

	v, _, _ := ch.TryReceive()
	require.Equal(t, 1, v, "expected dropped send to vanish")
}

func TestChannel_RendezvousThrowOverflow(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(0), WithOverflow(OverflowThrow))
	require.NoError(t, err)

	_, err = ch.TrySend(1)
	require.ErrorIs(t, err, ErrOverflow, "send on a rendezvous channel with no waiting consumer should overflow")

	err = ch.Send(context.Background(), 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestChannel_RendezvousDropOverflow(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(0), WithOverflow(OverflowDrop))
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err, "dropped send on a rendezvous channel should report success with no error")
	require.True(t, ok)

	err = ch.Send(context.Background(), 2)
	require.NoError(t, err)

	_, ok, _ = ch.TryReceive()
	require.False(t, ok, "dropped sends should never appear on receive")
}

func TestChannel_RendezvousDisplaceOverflowDegradesToDrop(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(0), WithOverflow(OverflowDisplace))
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err, "displace on a rendezvous channel has nothing to evict, so it degrades to drop")
	require.True(t, ok)

	_, ok, _ = ch.TryReceive()
	require.False(t, ok, "displaced send on a rendezvous channel should never appear on receive")
}

func TestChannel_RendezvousBlockStillParks(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(0), WithOverflow(OverflowBlock))
	require.NoError(t, err)

	ok, err := ch.TrySend(1)
	require.NoError(t, err)
	require.False(t, ok, "default block policy must still fail TrySend with no waiting consumer")
}

func TestChannel_CloseWithCause(t *testing.T) {
	ch, err := NewChannel[int]()
	require.NoError(t, err)
	cause := errors.New("boom")

	done := make(chan error, 1)
	go func() {
		_, err := ch.Receive(context.Background())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	ch.Close(cause)

	require.ErrorIs(t, <-done, cause)

	_, err = ch.Receive(context.Background())
	require.ErrorIs(t, err, cause)
}

func TestChannel_CloseWakesParkedProducers(t *testing.T) {
	ch, err := NewChannel[int]()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- ch.Send(context.Background(), 1)
	}()
	time.Sleep(10 * time.Millisecond)
	ch.Close(nil)

	require.ErrorIs(t, <-done, ErrChannelClosed)
}

func TestChannel_SendReceiveCancellation(t *testing.T) {
	ch, err := NewChannel[int]()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = ch.Receive(ctx)
	var cc *CancelCause
	require.ErrorAs(t, err, &cc)
}

func TestChannel_UnboundedNeverBlocks(t *testing.T) {
	ch, err := NewChannel[int](WithCapacity(-1))
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		ok, err := ch.TrySend(i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	for i := 0; i < 1000; i++ {
		v, ok, err := ch.TryReceive()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}
