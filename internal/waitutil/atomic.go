// atomic.go: cache-line padded atomics shared by the ring and merger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package waitutil

import "sync/atomic"

// AtomicPaddedInt64 is an int64 padded to a full cache line on both sides,
// so hot counters accessed by a writer goroutine and the merger goroutine
// never land on the same cache line as an unrelated field.
type AtomicPaddedInt64 struct {
	_   [64]byte
	val int64
	_   [64]byte
}

func (a *AtomicPaddedInt64) Load() int64 { return atomic.LoadInt64(&a.val) }

func (a *AtomicPaddedInt64) Store(val int64) { atomic.StoreInt64(&a.val, val) }

func (a *AtomicPaddedInt64) Add(delta int64) int64 { return atomic.AddInt64(&a.val, delta) }

func (a *AtomicPaddedInt64) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.val, old, new)
}
