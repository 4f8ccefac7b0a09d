// config.go: centralized, defaulted configuration for a Logger instance
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"fmt"
	"os"

	"github.com/kestrel-log/kestrel/internal/ring"
	"github.com/kestrel-log/kestrel/internal/waitutil"
)

// Config centralizes the parameters of a Logger instance. Zero-value fields
// are replaced by sensible defaults in WithDefaults; callers typically
// build one with NewConfig() and mutate the fields they care about.
type Config struct {
	// QueuesMax bounds how many writer queues the registry may hold.
	// Assign fails with CapacityExhausted once this many queues exist and
	// none is free to reuse.
	QueuesMax int

	// DefaultLinesPerQueue is the slot count for a queue created by an
	// Assign call that doesn't request a specific size.
	DefaultLinesPerQueue int64

	// MinLevel is the minimum severity admitted; records with a higher
	// numeric level (less severe) are dropped at the log call itself.
	MinLevel Level

	// Options are the default per-queue options (NonBlock, PrintLost,
	// Prealloc, NoQueue) applied when a caller doesn't override them.
	Options ring.Options

	// Output is where the merger writes formatted lines.
	Output WriteSyncer

	// Formatter turns each Record into an output line. Defaults to
	// NewTextFormatter().
	Formatter Formatter

	// Idle governs what the merger does once the bounded adaptive spin
	// exhausts its retries and it falls back to parking on the Wait
	// Primitive's channel; this is an extra idle step layered on top,
	// not a replacement for it. Defaults to BalancedStrategy.
	Idle waitutil.IdleStrategy

	// Mode selects the compile-time-equivalent execution path: threaded
	// (default), synchronous inline formatting, or a no-op.
	Mode Mode

	// OnSinkError, if set, is invoked from the merger goroutine whenever
	// a write to Output fails. The merger always drops the line and
	// continues rather than stalling producers.
	OnSinkError func(error)

	// minLevelSet distinguishes "MinLevel left at its zero value" from an
	// explicit SetMinLevel(Emerg) call, so WithDefaults knows when not to
	// override it with the Info default.
	minLevelSet bool
}

// Mode selects how Log calls are executed.
type Mode int

const (
	// ThreadedMode runs the full writer-queue + merger pipeline described
	// by this package: the default and the only mode that defers
	// formatting off the caller's goroutine.
	ThreadedMode Mode = iota
	// SyncMode formats and writes inline on the caller's goroutine,
	// bypassing the ring/merge machinery entirely. Useful for tests and
	// single-threaded CLIs where the queue/merger overhead isn't worth
	// it.
	SyncMode
	// NoopMode discards every call immediately. Go always evaluates a
	// call's arguments before the call executes, so unlike the
	// compile-time macro this mode is modeled on, NoopMode cannot avoid
	// evaluating argument expressions — it only skips the formatting and
	// write. Callers who need to skip argument evaluation entirely
	// should guard the call site with (*Writer).Enabled.
	NoopMode
)

// NewConfig returns a Config with every field defaulted, ready to use as-is
// or mutate before passing to New.
func NewConfig() *Config {
	c := &Config{}
	c.WithDefaults()
	return c
}

// WithDefaults fills zero-valued fields with the library defaults, exactly
// as New does when a caller passes a partially-built Config.
func (c *Config) WithDefaults() *Config {
	if c.QueuesMax <= 0 {
		c.QueuesMax = 64
	}
	if c.DefaultLinesPerQueue <= 0 {
		c.DefaultLinesPerQueue = 1024
	}
	if c.Output == nil {
		c.Output = WrapWriter(os.Stdout)
	}
	if c.Formatter == nil {
		c.Formatter = NewTextFormatter()
	}
	if c.Idle == nil {
		c.Idle = BalancedStrategy
	}
	// MinLevel's zero value is Emerg (0), which is the most restrictive
	// setting and almost never what a caller wants by omission, so the
	// practical default is Info unless the caller explicitly set one.
	if c.MinLevel == 0 && !c.minLevelSet {
		c.MinLevel = Info
	}
	return c
}

// SetMinLevel records an explicit MinLevel, including Emerg, so WithDefaults
// doesn't overwrite it with the Info default.
func (c *Config) SetMinLevel(l Level) *Config {
	c.MinLevel = l
	c.minLevelSet = true
	return c
}

// Validate reports configuration errors that New would otherwise have to
// surface one field at a time.
func (c *Config) Validate() error {
	if c.QueuesMax <= 0 {
		return newError(ErrCodeInvalidArgument, "QueuesMax must be positive")
	}
	if c.DefaultLinesPerQueue <= 0 {
		return newError(ErrCodeInvalidArgument, "DefaultLinesPerQueue must be positive")
	}
	if !c.MinLevel.Valid() {
		return newError(ErrCodeInvalidArgument, fmt.Sprintf("invalid MinLevel %d", c.MinLevel))
	}
	return nil
}
