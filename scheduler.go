package strand

import (
	"context"
	"sync"
	"time"

	"github.com/ravhalden/strand/metrics"
	"github.com/ravhalden/strand/pool"
)

// MetricsProvider is the scheduler-facing alias for metrics.Provider, kept
// local so Config and the option builders don't need to import the
// metrics package directly.
type MetricsProvider = metrics.Provider

// Scheduler runs fibers across a worker-slot pool (fixed or dynamic) and
// owns the park/unpark bookkeeping shared by channel ops, select, sleep,
// and val observation. Join does not release the caller's slot.
type Scheduler struct {
	cfg     Config
	slots   pool.SlotPool
	metrics MetricsProvider

	inflight  sync.WaitGroup
	closed    chan struct{}
	lifecycle *schedulerLifecycle

	spawnedCnt  metrics.Counter
	activeGauge metrics.UpDownCounter
}

func newScheduler(cfg *Config) *Scheduler {
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopProvider()
	}

	var slots pool.SlotPool
	if cfg.MaxProcs > 0 {
		slots = pool.NewFixed(cfg.MaxProcs)
	} else {
		slots = pool.NewDynamic()
	}

	s := &Scheduler{
		cfg:         *cfg,
		slots:       slots,
		metrics:     m,
		closed:      make(chan struct{}),
		spawnedCnt:  m.Counter("fiber.spawned", metrics.WithDescription("fibers spawned")),
		activeGauge: m.UpDownCounter("fiber.active", metrics.WithDescription("fibers currently running")),
	}
	s.lifecycle = newSchedulerLifecycle(&s.inflight, s.closed)
	return s
}

var (
	defaultOnce sync.Once
	defaultSch  *Scheduler
)

// Default returns a process-wide lazily-initialized Scheduler for programs
// that only need one. Spawn still requires an explicit reference; Default
// just saves constructing one by hand.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultSch, _ = NewScheduler()
	})
	return defaultSch
}

// Spawn starts body on a new Fiber. body receives a context derived from
// ctx that carries the Fiber itself (retrievable via Current) and is
// cancelled when the fiber is interrupted or ctx is done. Shutdown does not
// cancel it; only a Sleep in progress returns early on shutdown.
func (s *Scheduler) Spawn(ctx context.Context, name string, body func(context.Context) (any, error)) *Fiber {
	fctx, cancel := context.WithCancelCause(ctx)
	f := &Fiber{termination: newTermination(), name: name, scheduler: s, cancel: cancel}
	fctx = context.WithValue(fctx, fiberCtxKey{}, f)
	f.ctx = fctx

	select {
	case <-s.closed:
		f.finish(nil, &CancelCause{Op: "spawn"})
		return f
	default:
	}

	s.inflight.Add(1)
	f.setState(StateRunnable)
	go s.runFiber(f, body)
	return f
}

func (s *Scheduler) runFiber(f *Fiber, body func(context.Context) (any, error)) {
	defer s.inflight.Done()

	if err := s.slots.Acquire(f.ctx); err != nil {
		f.finish(nil, &CancelCause{Op: "spawn"})
		return
	}
	defer s.slots.Release()

	s.spawnedCnt.Add(1)
	s.activeGauge.Add(1)
	defer s.activeGauge.Add(-1)

	value, cause := f.runBody(body)
	f.finish(value, cause)
}

// sleep implements Sleep for a fiber: release its slot for the duration,
// honoring the scheduler's TimerResolution floor.
func (s *Scheduler) sleep(ctx context.Context, dur time.Duration) error {
	if min := time.Duration(s.cfg.TimerResolution); dur < min {
		dur = min
	}
	release, reacquire := slotHooks(ctx)
	release()
	defer reacquire()

	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return &CancelCause{Op: "sleep"}
	case <-s.closed:
		return &CancelCause{Op: "sleep"}
	}
}

// Shutdown stops admitting new fibers and waits for in-flight fibers to
// terminate, or for ctx to be done first.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	return s.lifecycle.shutdown(ctx)
}
