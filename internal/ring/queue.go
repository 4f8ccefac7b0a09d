// queue.go: the single-producer/single-consumer writer ring buffer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import (
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/kestrel-log/kestrel/internal/bufferpool"
	"github.com/kestrel-log/kestrel/internal/waitutil"
)

// ErrWouldBlock is returned by Publish on a NonBlock queue that is full.
var ErrWouldBlock = errors.New("ring: queue full, non-blocking drop")

// fullRetryInterval is the blocking-mode yield between full-queue retries;
// the default policy never drops, it only waits for the merger to drain a
// slot.
const fullRetryInterval = 20 * time.Microsecond

// nonBlockRetryInterval is the single extra wait a NonBlock queue grants
// before giving up and counting the record as lost.
const nonBlockRetryInterval = time.Microsecond

// Queue is a fixed-capacity ring of Records bound to exactly one writer at a
// time. wrSeq is advanced only by that writer; rdSeq only by the merger.
// Both are accessed with atomics purely so that a releasing writer (the
// registry's drain wait) can observe rdSeq's progress from a third
// goroutine — there is no other cross-goroutine contention on either field.
type Queue struct {
	Lines      []Record
	LinesNr    int64
	QueueIdx   int
	ThreadName string
	Opts       Options

	free int32 // atomic: 1 = unbound/reusable, 0 = bound to a writer

	// wrSeq and rdSeq sit on opposite sides of the SPSC handoff and are
	// touched every publish/consume by two different goroutines; padding
	// keeps them off a shared cache line with each other and with free.
	wrSeq waitutil.AtomicPaddedInt64 // writer-owned
	rdSeq waitutil.AtomicPaddedInt64 // merger-owned

	lost      int64 // writer-owned, no cross-thread access
	lostTotal int64 // writer-owned, no cross-thread access

	// startMono is the monotonic origin TimestampNS is measured from. It
	// must be the same instant across every queue feeding one merge (set
	// via Builder.WithEpoch from the owning Registry), or TimestampNS
	// values minted by different queues are not comparable and the
	// merger's global time order breaks.
	startMono time.Time
}

// Builder constructs a Queue with PREALLOC page-touching applied before the
// hot path ever sees it.
type Builder struct {
	linesNr int64
	opts    Options
	name    string
	epoch   time.Time
}

// NewBuilder starts building a Queue with linesNr slots.
func NewBuilder(linesNr int64) *Builder {
	if linesNr < 1 {
		linesNr = 1
	}
	return &Builder{linesNr: linesNr}
}

// WithOptions sets the queue's option bitmask.
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithName sets the thread-name label captured at bind time.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithEpoch sets the monotonic origin every TimestampNS is measured from.
// All queues sharing one merge (i.e. one Registry) must Build with the same
// epoch, or their TimestampNS values are not comparable across queues.
func (b *Builder) WithEpoch(epoch time.Time) *Builder {
	b.epoch = epoch
	return b
}

// Build allocates the slot array and, if Prealloc is set, touches every
// slot's backing memory so the writer's first publish never faces a first-
// touch page fault.
func (b *Builder) Build() *Queue {
	epoch := b.epoch
	if epoch.IsZero() {
		epoch = time.Now()
	}
	q := &Queue{
		Lines:      make([]Record, b.linesNr),
		LinesNr:    b.linesNr,
		ThreadName: b.name,
		Opts:       b.opts,
		free:       1,
		startMono:  epoch,
	}
	if b.opts.Has(Prealloc) {
		for i := range q.Lines {
			q.Lines[i].TimestampNS = -1
			for j := range q.Lines[i].Msg {
				q.Lines[i].Msg[j] = byte(j)
			}
		}
	}
	return q
}

// IsFree reports whether the queue is currently unbound and eligible for
// reuse.
func (q *Queue) IsFree() bool { return atomic.LoadInt32(&q.free) == 1 }

// TryBind attempts to claim the queue for a new writer, racing any other
// assigning goroutine via CAS. Returns false if another goroutine won.
func (q *Queue) TryBind(name string) bool {
	if atomic.CompareAndSwapInt32(&q.free, 1, 0) {
		q.ThreadName = name
		q.wrSeq.Store(0)
		q.rdSeq.Store(0)
		q.lost = 0
		q.lostTotal = 0
		return true
	}
	return false
}

// MarkFree releases the queue back to the registry's reuse pool. Callers
// must have already drained it (WrSeq() == RdSeq()).
func (q *Queue) MarkFree() { atomic.StoreInt32(&q.free, 1) }

// WrSeq returns the writer's current publish sequence.
func (q *Queue) WrSeq() uint64 { return uint64(q.wrSeq.Load()) }

// RdSeq returns the merger's current consume sequence.
func (q *Queue) RdSeq() uint64 { return uint64(q.rdSeq.Load()) }

// Pending returns the number of published-but-not-yet-emitted records.
func (q *Queue) Pending() uint64 { return q.WrSeq() - q.RdSeq() }

// Publish writes one record and makes it visible to the merger. If the
// queue carries PrintLost and has accumulated drops, a synthetic Oops-level
// summary record is published first.
func (q *Queue) Publish(wait *WaitPrimitive, level Level, file, fn string, line int, msg []byte) error {
	if q.Opts.Has(PrintLost) && q.lost > 0 {
		buf := bufferpool.Get()
		buf.WriteString("dropped ")
		buf.WriteString(strconv.FormatInt(q.lost, 10))
		buf.WriteString(" records (lost_total=")
		buf.WriteString(strconv.FormatInt(q.lostTotal, 10))
		buf.WriteByte(')')
		err := q.publishOne(wait, Oops, file, fn, line, buf.Bytes())
		bufferpool.Put(buf)
		if err != nil {
			return err
		}
		q.lost = 0
	}
	return q.publishOne(wait, level, file, fn, line, msg)
}

func (q *Queue) publishOne(wait *WaitPrimitive, level Level, file, fn string, line int, msg []byte) error {
	nonBlock := q.Opts.Has(NonBlock)
	extraTry := false
	for {
		idx := uint64(q.wrSeq.Load()) % uint64(q.LinesNr)
		if !q.Lines[idx].IsReady() {
			break
		}

		wait.WakeOne()
		if nonBlock {
			if extraTry {
				q.lost++
				q.lostTotal++
				return ErrWouldBlock
			}
			extraTry = true
			time.Sleep(nonBlockRetryInterval)
			continue
		}
		time.Sleep(fullRetryInterval)
	}

	idx := uint64(q.wrSeq.Load()) % uint64(q.LinesNr)
	slot := &q.Lines[idx]
	slot.TimestampNS = time.Since(q.startMono).Nanoseconds()
	slot.WallTime = timecache.CachedTimeNano()
	slot.Level = level
	slot.File = file
	slot.Func = fn
	slot.Line = line
	slot.SetMsg(msg)
	slot.MarkReady()

	q.wrSeq.Add(1)
	wait.WakeOne()
	return nil
}

// Head returns the record the merger would next consume, and whether it is
// actually ready.
func (q *Queue) Head() (*Record, bool) {
	idx := uint64(q.rdSeq.Load()) % uint64(q.LinesNr)
	slot := &q.Lines[idx]
	return slot, slot.IsReady()
}

// ReleaseHead frees the current head slot and advances the merger's
// sequence. Call only after Head reported ready.
func (q *Queue) ReleaseHead() {
	idx := uint64(q.rdSeq.Load()) % uint64(q.LinesNr)
	q.Lines[idx].MarkFree()
	q.rdSeq.Add(1)
}
