// record.go: the fixed-size log record slot shared by every writer queue
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ring

import "sync/atomic"

// LineSize is the fixed maximum size of an encoded record message, matching
// the default LINE_SZ of the system this package implements. Messages of
// exactly LineSize-1 bytes are preserved in full; anything longer is
// truncated and NUL-terminated.
const LineSize = 1024

// Level is a log severity. Unlike most Go logging libraries, severity is
// DESCENDING: Emerg is the most severe (0) and Oops is the least severe
// (10), mirroring the syslog-style C enum this package is modeled on. A
// filter admits a record when level <= minimum.
type Level uint8

// The 11 severities, most to least severe.
const (
	Emerg Level = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
	Okay
	Trace
	Oops
	levelCount
)

var levelNames = [levelCount]string{
	Emerg:    "emerg",
	Alert:    "alert",
	Critical: "critical",
	Error:    "error",
	Warning:  "warning",
	Notice:   "notice",
	Info:     "info",
	Debug:    "debug",
	Okay:     "okay",
	Trace:    "trace",
	Oops:     "oops",
}

// String returns the lowercase syslog-style name of the level, or "unknown"
// for an out-of-range value.
func (l Level) String() string {
	if l >= levelCount {
		return "unknown"
	}
	return levelNames[l]
}

// Valid reports whether l is one of the 11 defined severities.
func (l Level) Valid() bool {
	return l < levelCount
}

// Options is a bitmask of per-queue behaviors, set at queue creation time.
type Options uint8

const (
	// NonBlock makes Publish, when the queue is full, wait about 1µs and
	// retry once, then return ErrWouldBlock instead of waiting further,
	// incrementing lost/lostTotal.
	NonBlock Options = 1 << iota
	// PrintLost makes the queue emit one synthetic Oops-level record
	// summarizing the drop count the next time a slot frees up, instead
	// of silently accumulating Lost forever.
	PrintLost
	// Prealloc touches every slot's backing page at Build time instead of
	// leaving it to the first write, trading startup time for a writer
	// hot path free of first-touch page faults.
	Prealloc
	// NoQueue excludes this queue from the registry's free-queue reuse
	// scan in both directions: a released NoQueue queue is never handed
	// back out, and an Assign call carrying NoQueue never reuses any free
	// queue.
	NoQueue
)

// Has reports whether all bits in want are set in o.
func (o Options) Has(want Options) bool { return o&want == want }

// Record is one fixed-size log line slot. Slots are pre-allocated in a
// Queue's backing array and reused in a ring; Ready is the sole cross-thread
// handshake between the writer that populates a slot and the merger that
// consumes it. Every other field is accessed under the SPSC single-owner
// discipline: the writer alone touches a slot between claiming it and
// setting Ready, and the merger alone touches it between observing Ready
// and clearing it.
type Record struct {
	Ready       int32 // atomic: 0 = free/not yet published, 1 = published
	TimestampNS int64 // monotonic nanoseconds, used for merge ordering
	WallTime    int64 // wall-clock UnixNano, carried for display only
	Level       Level
	File        string // borrowed, caller-lifetime
	Func        string // borrowed, caller-lifetime
	Line        int
	Msg         [LineSize]byte
	MsgLen      int
}

// MarkReady publishes the slot to the merger.
func (r *Record) MarkReady() { atomic.StoreInt32(&r.Ready, 1) }

// MarkFree releases the slot back to the writer after the merger consumes
// it.
func (r *Record) MarkFree() { atomic.StoreInt32(&r.Ready, 0) }

// IsReady reports whether the merger may consume this slot.
func (r *Record) IsReady() bool { return atomic.LoadInt32(&r.Ready) == 1 }

// SetMsg copies msg into the record's fixed buffer, truncating to
// LineSize-1 bytes and NUL-terminating if msg is too long.
func (r *Record) SetMsg(msg []byte) {
	n := len(msg)
	if n > LineSize-1 {
		n = LineSize - 1
	}
	copy(r.Msg[:n], msg[:n])
	r.Msg[n] = 0
	r.MsgLen = n
}
