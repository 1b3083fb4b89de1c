package strand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewScheduler_DefaultsToDynamicPool(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	require.Equal(t, 0, s.slots.Cap())
}

func TestNewScheduler_WithFixedProcs(t *testing.T) {
	s, err := NewScheduler(WithFixedProcs(4))
	require.NoError(t, err)
	require.Equal(t, 4, s.slots.Cap())
}

func TestWithFixedProcs_ZeroPanics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewScheduler(WithFixedProcs(0))
	})
}

func TestConflictingPoolOptions_Panics(t *testing.T) {
	require.Panics(t, func() {
		_, _ = NewScheduler(WithFixedProcs(2), WithDynamicProcs())
	})
}

func TestChannelOptions_ApplyToConfig(t *testing.T) {
	cfg := defaultChannelConfig()
	for _, opt := range []ChannelOption{WithCapacity(5), WithOverflow(OverflowThrow), WithSingleProducer(), WithMultiConsumer()} {
		opt(&cfg)
	}
	require.Equal(t, 5, cfg.Capacity)
	require.Equal(t, OverflowThrow, cfg.Overflow)
	require.True(t, cfg.SingleProducer)
	require.False(t, cfg.SingleConsumer)
}
