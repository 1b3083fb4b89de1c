package strand

import (
	"context"
	"sync"
)

// schedulerLifecycle orchestrates Scheduler.Shutdown's deterministic
// sequence: stop admitting new fibers, then wait for in-flight fibers to
// terminate (or ctx to expire first). It runs this sequence exactly once;
// concurrent callers of Shutdown all observe the same outcome.
type schedulerLifecycle struct {
	once     sync.Once
	inflight *sync.WaitGroup
	closed   chan struct{}
}

func newSchedulerLifecycle(inflight *sync.WaitGroup, closed chan struct{}) *schedulerLifecycle {
	return &schedulerLifecycle{inflight: inflight, closed: closed}
}

func (lc *schedulerLifecycle) shutdown(ctx context.Context) error {
	var err error
	lc.once.Do(func() {
		close(lc.closed)

		drained := make(chan struct{})
		go func() {
			lc.inflight.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}
