package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFixed_BoundsConcurrentHolders(t *testing.T) {
	p := NewFixed(2)
	ctx := context.Background()

	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("Acquire 1: %v", err)
	}
	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("Acquire 2: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = p.Acquire(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("third Acquire should block while capacity is exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("third Acquire did not unblock after Release")
	}

	p.Release()
	p.Release()

	if p.Cap() != 2 {
		t.Fatalf("Cap() = %d, want 2", p.Cap())
	}
}

func TestFixed_AcquireRespectsContextCancellation(t *testing.T) {
	p := NewFixed(1)
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Acquire(ctx); err == nil {
		t.Fatalf("expected Acquire to fail on a cancelled context")
	}
}

func TestFixed_ConcurrentAcquireRelease(t *testing.T) {
	p := NewFixed(4)
	ctx := context.Background()

	var active, maxActive int64
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if err := p.Acquire(ctx); err != nil {
				return
			}
			defer p.Release()
			n := atomic.AddInt64(&active, 1)
			for {
				m := atomic.LoadInt64(&maxActive)
				if n <= m || atomic.CompareAndSwapInt64(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&active, -1)
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	if maxActive > 4 {
		t.Fatalf("observed %d concurrent holders, want <= 4", maxActive)
	}
}
