package strand

import "fmt"

// SchedulerOption configures a Scheduler. Use NewScheduler(opts...) to
// construct one via options.
type SchedulerOption func(*schedulerOptions)

// internal builder state for Scheduler option assembly.
type schedulerOptions struct {
	cfg          Config
	poolSelected poolType
}

type poolType int

const (
	poolUnspecified poolType = iota
	poolDynamic
	poolFixed
)

// WithFixedProcs selects a fixed-size worker-slot pool with the given
// capacity (must be > 0): at most n fibers run concurrently.
func WithFixedProcs(n uint) SchedulerOption {
	return func(so *schedulerOptions) {
		if so.poolSelected != poolUnspecified && so.poolSelected != poolFixed {
			panic("strand: conflicting pool options: WithFixedProcs and WithDynamicProcs both specified")
		}
		if n == 0 {
			panic("strand: WithFixedProcs requires n > 0")
		}
		so.poolSelected = poolFixed
		so.cfg.MaxProcs = n
	}
}

// WithDynamicProcs selects a dynamic (uncapped) worker-slot pool — the
// default when no pool option is given.
func WithDynamicProcs() SchedulerOption {
	return func(so *schedulerOptions) {
		if so.poolSelected != poolUnspecified && so.poolSelected != poolDynamic {
			panic("strand: conflicting pool options: WithFixedProcs and WithDynamicProcs both specified")
		}
		so.poolSelected = poolDynamic
		so.cfg.MaxProcs = 0
	}
}

// WithTimerResolution overrides the shortest duration a fiber's Sleep
// lasts (see Config.TimerResolution).
func WithTimerResolution(nanos int64) SchedulerOption {
	return func(so *schedulerOptions) { so.cfg.TimerResolution = nanos }
}

// WithMetrics attaches a metrics provider to the scheduler, which records
// its fiber counters there. Channels and Select do not record metrics.
func WithMetrics(p MetricsProvider) SchedulerOption {
	return func(so *schedulerOptions) { so.cfg.Metrics = p }
}

// NewScheduler creates a new Scheduler using functional options.
func NewScheduler(opts ...SchedulerOption) (*Scheduler, error) {
	so := schedulerOptions{cfg: defaultConfig(), poolSelected: poolUnspecified}
	for _, opt := range opts {
		if opt == nil {
			panic("strand: nil scheduler option")
		}
		opt(&so)
	}

	if so.poolSelected == poolUnspecified {
		so.poolSelected = poolDynamic
		so.cfg.MaxProcs = 0
	}

	if err := validateConfig(&so.cfg); err != nil {
		return nil, fmt.Errorf("strand: invalid scheduler config: %w", err)
	}

	return newScheduler(&so.cfg), nil
}

// ChannelOption configures a Channel[T].
type ChannelOption func(*ChannelConfig)

// WithCapacity sets the channel capacity (0 = rendezvous, -1 = unbounded, n>0 = bounded).
func WithCapacity(n int) ChannelOption {
	return func(c *ChannelConfig) { c.Capacity = n }
}

// WithOverflow sets the overflow policy applied when a bounded channel is full.
func WithOverflow(o Overflow) ChannelOption {
	return func(c *ChannelConfig) { c.Overflow = o }
}

// WithSingleProducer declares that at most one strand will ever send
// concurrently, permitting the implementation to skip producer mutex work.
func WithSingleProducer() ChannelOption {
	return func(c *ChannelConfig) { c.SingleProducer = true }
}

// WithMultiConsumer declares that more than one strand may receive
// concurrently (overriding the single-consumer default).
func WithMultiConsumer() ChannelOption {
	return func(c *ChannelConfig) { c.SingleConsumer = false }
}

// JoinOption configures JoinAll/JoinConcurrent.
type JoinOption func(*joinOptions)

type joinOptions struct {
	timeout    int64 // nanoseconds; 0 = no timeout
	hasTimeout bool
}

// WithJoinTimeout bounds how long JoinAll/JoinConcurrent waits before
// raising ErrTimeout.
func WithJoinTimeout(nanos int64) JoinOption {
	return func(jo *joinOptions) {
		jo.timeout = nanos
		jo.hasTimeout = true
	}
}

// SelectOption configures Select.
type SelectOption func(*selectOptions)

type selectOptions struct {
	priority   bool
	timeout    int64
	hasTimeout bool
}

// WithPriority makes Select favor the first ready operation in descriptor
// order rather than drawing uniformly among ready operations.
func WithPriority() SelectOption {
	return func(so *selectOptions) { so.priority = true }
}

// WithSelectTimeout bounds how long Select parks before returning the
// timeout outcome.
func WithSelectTimeout(nanos int64) SelectOption {
	return func(so *selectOptions) {
		so.timeout = nanos
		so.hasTimeout = true
	}
}
