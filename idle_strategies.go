// idle_strategies.go: public factory functions for the merger's idle behavior
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"time"

	"github.com/kestrel-log/kestrel/internal/waitutil"
)

// IdleStrategy controls what the merger does when every writer queue is
// empty: spin, yield, or sleep. This is independent of the bounded adaptive
// spin the merger always performs before falling back to the wait primitive
// — it governs only what happens once that fallback triggers.
//
// waitutil.ChannelIdleStrategy is intentionally not exposed here: nothing
// in this package drives its WakeUp/Reset wake path, so selecting it would
// leave the merger blocked on Idle() until its timeout, if any, elapses.
type IdleStrategy = waitutil.IdleStrategy

// NewSpinningIdleStrategy never yields: minimum latency, ~100% CPU when idle.
func NewSpinningIdleStrategy() IdleStrategy { return waitutil.NewSpinningIdleStrategy() }

// NewSleepingIdleStrategy spins up to maxSpins times, then sleeps sleepDuration.
func NewSleepingIdleStrategy(sleepDuration time.Duration, maxSpins int) IdleStrategy {
	return waitutil.NewSleepingIdleStrategy(sleepDuration, maxSpins)
}

// NewYieldingIdleStrategy calls runtime.Gosched() every maxSpins iterations.
func NewYieldingIdleStrategy(maxSpins int) IdleStrategy {
	return waitutil.NewYieldingIdleStrategy(maxSpins)
}

// NewProgressiveIdleStrategy hot-spins, then yields occasionally, then backs
// off to exponentially longer sleeps. This is the default.
func NewProgressiveIdleStrategy() IdleStrategy { return waitutil.NewProgressiveIdleStrategy() }

var (
	// SpinningStrategy: ultra-low latency, maximum CPU usage.
	SpinningStrategy = NewSpinningIdleStrategy()
	// BalancedStrategy: adapts to workload patterns. Default.
	BalancedStrategy = NewProgressiveIdleStrategy()
	// EfficientStrategy: minimizes CPU usage, 1ms sleep, no spin.
	EfficientStrategy = NewSleepingIdleStrategy(time.Millisecond, 0)
	// HybridStrategy: brief spin then 1ms sleep.
	HybridStrategy = NewSleepingIdleStrategy(time.Millisecond, 1000)
)
