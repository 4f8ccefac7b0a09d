// merger.go: the background reader performing the k-way time-ordered merge
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/kestrel-log/kestrel/internal/ring"
	"github.com/kestrel-log/kestrel/internal/waitutil"
)

// Formatter turns one Record into an output byte sequence, appending to
// dst and returning the extended slice so a Merger can reuse one staging
// buffer across every emitted record.
type Formatter interface {
	Format(dst []byte, rec *ring.Record) []byte
}

// Registry is the subset of registry.Registry the merger needs; declared
// here (rather than importing the registry package's concrete type) so the
// two packages don't have to agree on an import direction beyond this.
type Registry interface {
	Queues() []*ring.Queue
	ConsumeReload() bool
	Wait() *ring.WaitPrimitive
}

// emptyTS marks a fuse entry whose queue has no ready head.
const emptyTS = int64(math.MaxInt64)

type fuseEntry struct {
	ts int64
	q  *ring.Queue
}

// spinSteps is the bounded adaptive spin the merger performs before
// falling back to the Wait Primitive: 1, 2, 4, 8, 16 microseconds.
var spinSteps = [5]time.Duration{
	1 * time.Microsecond,
	2 * time.Microsecond,
	4 * time.Microsecond,
	8 * time.Microsecond,
	16 * time.Microsecond,
}

// Merger is the single reader goroutine that drains every writer queue in
// global timestamp order via an incrementally-resorted fuse array, handing
// each record to a Formatter and writing the result to Sink.
type Merger struct {
	reg       Registry
	wait      *ring.WaitPrimitive
	formatter Formatter
	sink      io.Writer
	idle      waitutil.IdleStrategy
	onSinkErr func(error)

	fuse []fuseEntry
	buf  []byte

	running int32
	done    chan struct{}
}

// New builds a Merger. idle may be nil, in which case no further idling is
// performed beyond the bounded adaptive spin and the Wait Primitive sleep.
// onSinkErr, if non-nil, receives sink write failures; the merger always
// continues and releases the slot rather than stalling producers.
func New(reg Registry, formatter Formatter, sink io.Writer, idle waitutil.IdleStrategy, onSinkErr func(error)) *Merger {
	return &Merger{
		reg:       reg,
		wait:      reg.Wait(),
		formatter: formatter,
		sink:      sink,
		idle:      idle,
		onSinkErr: onSinkErr,
		buf:       make([]byte, 0, ring.LineSize*2),
		running:   1,
		done:      make(chan struct{}),
	}
}

// Run drains every queue until Stop is called and all pending records have
// been emitted. It is meant to run on its own goroutine.
func (m *Merger) Run() {
	defer close(m.done)

	m.rebuildFuse()
	for {
		m.tick()

		if m.reg.ConsumeReload() {
			m.rebuildFuse()
			continue
		}

		if !m.allEmpty() {
			continue
		}

		if atomic.LoadInt32(&m.running) == 0 {
			return
		}

		if m.adaptiveSpin() {
			continue
		}

		if m.idle != nil {
			m.idle.Idle()
		}

		// A writer may have published (and called WakeOne, which missed
		// because waiting wasn't set yet) during idle.Idle() above, so
		// refill the fuse once more after MarkWaiting before trusting it.
		m.wait.MarkWaiting()
		m.tick()
		if m.allEmpty() && atomic.LoadInt32(&m.running) != 0 {
			m.wait.Sleep()
		}
	}
}

// Stop requests the merger to exit once every pending record has drained,
// and blocks until it has. It is safe to call only once.
func (m *Merger) Stop() {
	atomic.StoreInt32(&m.running, 0)
	for {
		select {
		case <-m.done:
			return
		default:
		}
		m.wait.WakeOne()
		time.Sleep(50 * time.Microsecond)
	}
}

func (m *Merger) allEmpty() bool {
	return len(m.fuse) == 0 || m.fuse[0].ts == emptyTS
}

// rebuildFuse re-reads the registry's queue slice and does a one-time full
// sort; this only happens on startup and whenever a writer's Assign call
// grows the registry, so an O(k log k) sort here is not on the hot path.
func (m *Merger) rebuildFuse() {
	qs := m.reg.Queues()
	fuse := make([]fuseEntry, len(qs))
	for i, q := range qs {
		fuse[i] = fuseEntry{ts: emptyTS, q: q}
	}
	m.fuse = fuse
	for i := range m.fuse {
		m.tryRefill(i)
	}
	m.insertionSort()
}

func (m *Merger) insertionSort() {
	for i := 1; i < len(m.fuse); i++ {
		for j := i; j > 0 && m.fuse[j].ts < m.fuse[j-1].ts; j-- {
			m.fuse[j], m.fuse[j-1] = m.fuse[j-1], m.fuse[j]
		}
	}
}

// tick performs one emission step: emit the current head if any, refill it
// from its queue and bubble it into place, then scan for other entries
// that went empty and try to refill those too.
func (m *Merger) tick() {
	if len(m.fuse) == 0 {
		return
	}

	if m.fuse[0].ts != emptyTS {
		head := &m.fuse[0]
		if rec, ok := head.q.Head(); ok {
			m.emit(rec)
			head.q.ReleaseHead()
		}
		m.tryRefill(0)
		m.bubbleUp(0)
	}

	for i := range m.fuse {
		if m.fuse[i].ts == emptyTS {
			if m.tryRefill(i) {
				m.bubbleDown(i)
			}
		}
	}
}

func (m *Merger) tryRefill(i int) bool {
	e := &m.fuse[i]
	rec, ok := e.q.Head()
	if !ok {
		e.ts = emptyTS
		return false
	}
	e.ts = rec.TimestampNS
	return true
}

// bubbleUp moves a freshly-refilled entry (whose key may have increased)
// rightward until the ascending sort invariant holds again.
func (m *Merger) bubbleUp(pos int) {
	for pos+1 < len(m.fuse) && m.fuse[pos].ts > m.fuse[pos+1].ts {
		m.fuse[pos], m.fuse[pos+1] = m.fuse[pos+1], m.fuse[pos]
		pos++
	}
}

// bubbleDown moves a freshly-refilled entry (previously empty, sorted
// toward the tail) leftward into its proper position. The <= comparison
// mirrors the tie-breaking rule: equal timestamps stabilize the newly
// filled entry below any existing equal-or-smaller neighbor.
func (m *Merger) bubbleDown(pos int) {
	for pos > 0 && m.fuse[pos].ts <= m.fuse[pos-1].ts {
		m.fuse[pos], m.fuse[pos-1] = m.fuse[pos-1], m.fuse[pos]
		pos--
	}
}

// adaptiveSpin retries tick() across 5 exponentially growing sleeps before
// giving up and falling back to the Wait Primitive. Returns true if work
// appeared during the spin.
func (m *Merger) adaptiveSpin() bool {
	for _, d := range spinSteps {
		time.Sleep(d)
		m.tick()
		if !m.allEmpty() {
			return true
		}
		if m.reg.ConsumeReload() {
			m.rebuildFuse()
			return true
		}
	}
	return false
}

func (m *Merger) emit(rec *ring.Record) {
	m.buf = m.formatter.Format(m.buf[:0], rec)
	if _, err := m.sink.Write(m.buf); err != nil && m.onSinkErr != nil {
		m.onSinkErr(err)
	}
}
