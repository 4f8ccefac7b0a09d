// level.go: severity levels, re-exported from the ring package
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kestrel-log/kestrel/internal/ring"
)

// Level is the severity of a log record. Unlike most Go logging libraries
// it is DESCENDING: Emerg (0) is the most severe, Oops (10) the least. A
// filter admits a record when its level is numerically <= the configured
// minimum.
type Level = ring.Level

// The 11 severities, most to least severe.
const (
	Emerg    = ring.Emerg
	Alert    = ring.Alert
	Critical = ring.Critical
	Error    = ring.Error
	Warning  = ring.Warning
	Notice   = ring.Notice
	Info     = ring.Info
	Debug    = ring.Debug
	Okay     = ring.Okay
	Trace    = ring.Trace
	Oops     = ring.Oops
)

var levelNamesMap = map[string]Level{
	"emerg":     Emerg,
	"emergency": Emerg,
	"alert":     Alert,
	"crit":      Critical,
	"critical":  Critical,
	"err":       Error,
	"error":     Error,
	"warn":      Warning,
	"warning":   Warning,
	"notice":    Notice,
	"info":      Info,
	"":          Info,
	"debug":     Debug,
	"okay":      Okay,
	"ok":        Okay,
	"trace":     Trace,
	"oops":      Oops,
}

// ParseLevel parses a level name (case-insensitive, with common aliases)
// into a Level. An empty string parses as Info.
func ParseLevel(s string) (Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if l, ok := levelNamesMap[normalized]; ok {
		return l, nil
	}
	return Info, fmt.Errorf("kestrel: unknown level %q", s)
}

// AtomicLevel provides lock-free get/set of the minimum admitted level,
// suitable for changing a running Logger's filter from another goroutine.
type AtomicLevel struct {
	v atomic.Int32
}

// NewAtomicLevel returns an AtomicLevel initialized to level.
func NewAtomicLevel(level Level) *AtomicLevel {
	al := &AtomicLevel{}
	al.v.Store(int32(level))
	return al
}

// Level returns the current minimum level.
func (a *AtomicLevel) Level() Level { return Level(a.v.Load()) }

// SetLevel atomically updates the minimum level.
func (a *AtomicLevel) SetLevel(level Level) { a.v.Store(int32(level)) }

// Admits reports whether level is at or above the configured minimum
// severity (i.e. level <= the stored threshold, since severity descends).
func (a *AtomicLevel) Admits(level Level) bool {
	return level <= Level(a.v.Load())
}

// String returns the name of the current minimum level.
func (a *AtomicLevel) String() string { return a.Level().String() }
