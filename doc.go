// Package strand provides a user-space concurrency runtime built on top of
// goroutines: fibers (Strand) scheduled through a bounded or dynamic
// worker-slot pool, typed channels with configurable overflow policies,
// ticker channels and topics for fan-out, a multi-way Select over
// heterogeneous operations, single-assignment dataflow Vals, and Join for
// collecting strand outcomes.
//
// Constructors
//   - NewScheduler(opts ...SchedulerOption): build a Scheduler with
//     functional options (WithFixedProcs/WithDynamicProcs, WithMetrics, ...).
//   - Default(): a lazily-created process-wide Scheduler, for programs
//     that only ever need one.
//
// Defaults
// Unless overridden, a Scheduler uses:
//   - MaxProcs: 0 (dynamic pool, one slot per concurrently-active fiber)
//   - TimerResolution: 1ms
//   - Metrics: metrics.NoopProvider{}
//
// Channels
// NewChannel[T] defaults to a rendezvous channel (capacity 0, single
// consumer) unless ChannelOptions override it. Overflow policies
// (OverflowBlock/Throw/Drop/Displace) apply to bounded channels that are
// full and to rendezvous channels with no waiting consumer; unbounded
// channels never overflow.
//
// Suspension points
// Send, Receive, Select, Sleep, and Val.Observe all release the calling
// fiber's scheduler slot for the duration of the block and reacquire it
// before returning, so a fiber parked in them never occupies a slot
// another fiber could use to make progress. Join does not release the
// slot: a fiber blocked in Join keeps holding it until Join returns.
package strand
