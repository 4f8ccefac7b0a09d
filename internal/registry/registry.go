// registry.go: the mutable set of writer queues shared by a Logger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrel-log/kestrel/internal/ring"
)

// releaseDrainInterval is the yield between drain-wait iterations in
// Release, matching the "~100 µs per loop" policy for a releasing writer.
const releaseDrainInterval = 100 * time.Microsecond

// ErrCapacityExhausted is returned by Assign when no reuse candidate exists
// and the registry has already grown to QueuesMax.
type capacityError struct{}

func (capacityError) Error() string { return "registry: capacity exhausted" }

// ErrCapacityExhausted is the sentinel returned when the registry cannot
// grow further and no free queue satisfies the request.
var ErrCapacityExhausted error = capacityError{}

// Registry owns the process-wide (or Logger-wide) set of writer queues plus
// the single Wait Primitive shared between every writer and the merger.
// Writer-side growth is serialized by mu; the merger takes a snapshot of
// the queue slice through Queues only when it rebuilds its fuse, and learns
// of growth through Reload rather than by re-reading the slice every tick.
type Registry struct {
	mu sync.Mutex

	queues    []*ring.Queue
	queuesMax int

	defaultLinesNr int64
	defaultOpts    ring.Options

	// epoch is the single monotonic origin every queue this registry
	// builds shares, so TimestampNS values minted by different queues
	// stay comparable for the merger's global time order.
	epoch time.Time

	wait *ring.WaitPrimitive

	// Reload is a one-shot atomic signal: set to 1 whenever the registry
	// grows, consumed by the merger with a single CAS(1, 0) per tick.
	reload int32
}

// New creates a registry capable of holding up to queuesMax queues, each
// defaulting to defaultLinesNr slots and defaultOpts when a caller doesn't
// override them.
func New(queuesMax int, defaultLinesNr int64, defaultOpts ring.Options) *Registry {
	return &Registry{
		queues:         make([]*ring.Queue, 0, queuesMax),
		queuesMax:      queuesMax,
		defaultLinesNr: defaultLinesNr,
		defaultOpts:    defaultOpts,
		epoch:          time.Now(),
		wait:           ring.NewWaitPrimitive(),
	}
}

// Wait returns the single Wait Primitive shared by every queue this
// registry manages.
func (r *Registry) Wait() *ring.WaitPrimitive { return r.wait }

// Queues returns the live slice of queues, read under mu. Callers (the
// merger, and Logger.Close when draining) must treat the slice as
// read-only; a racing append is surfaced through
// Reload, not through slice mutation (Registry never shrinks or
// reassigns indices).
func (r *Registry) Queues() []*ring.Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queues
}

// ConsumeReload reports and clears a pending reload signal. The merger
// calls this once per tick; a true result means the queue set changed
// since the last call and the merger's fuse must be rebuilt.
func (r *Registry) ConsumeReload() bool {
	return atomic.CompareAndSwapInt32(&r.reload, 1, 0)
}

func (r *Registry) signalReload() {
	atomic.StoreInt32(&r.reload, 1)
}

// Assign finds or creates a queue for a new writer named name, requesting
// at least linesNr slots (0 meaning the registry default) and opts (0
// meaning the registry default). If opts carries ring.NoQueue, this request
// never reuses any free queue, and the queue it gets is never handed to a
// later request once released.
//
// Best-fit reuse: among free queues with capacity >= linesNr, the smallest
// capable one is chosen, breaking ties by scan order. CAS loss on the
// chosen candidate's free flag restarts the scan rather than failing the
// whole call, since the race only means another writer got there first.
func (r *Registry) Assign(name string, linesNr int64, opts ring.Options) (*ring.Queue, error) {
	if linesNr <= 0 {
		linesNr = r.defaultLinesNr
	}
	if opts == 0 {
		opts = r.defaultOpts
	}

retry:
	r.mu.Lock()
	var best *ring.Queue
	if !opts.Has(ring.NoQueue) {
		for _, q := range r.queues {
			if !q.IsFree() || q.Opts.Has(ring.NoQueue) {
				continue
			}
			if q.LinesNr < linesNr {
				continue
			}
			if best == nil || q.LinesNr < best.LinesNr {
				best = q
			}
		}
	}

	if best == nil {
		if len(r.queues) >= r.queuesMax {
			r.mu.Unlock()
			return nil, ErrCapacityExhausted
		}
		q := ring.NewBuilder(linesNr).WithOptions(opts).WithName(name).WithEpoch(r.epoch).Build()
		q.TryBind(name)
		q.QueueIdx = len(r.queues)
		r.queues = append(r.queues, q)
		r.signalReload()
		r.mu.Unlock()
		return q, nil
	}
	r.mu.Unlock()

	if !best.TryBind(name) {
		goto retry
	}
	return best, nil
}

// Release drains q (waiting for the merger to consume every published
// record, poking it if asleep) and marks it free for reuse.
func (r *Registry) Release(q *ring.Queue) {
	for q.Pending() > 0 {
		r.wait.WakeOne()
		time.Sleep(releaseDrainInterval)
	}
	q.MarkFree()
}
