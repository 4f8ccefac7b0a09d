// options.go: functional options layered on top of Config
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"github.com/kestrel-log/kestrel/internal/ring"
	"github.com/kestrel-log/kestrel/internal/waitutil"
)

// Option mutates a Config during construction. Options are applied in
// order, after WithDefaults would otherwise run, so an Option can override
// any default.
type Option func(*Config)

// Hook is executed immediately after a record is formatted, before the
// formatted line is written to the sink. In ThreadedMode it runs in the
// merger goroutine, so it adds no contention to the writer hot path, but a
// slow hook does delay every other queue's emission. In SyncMode it runs
// inline on the logging goroutine, which formats the record itself.
type Hook func(rec *ring.Record)

// Apply runs every opt against cfg in order. New calls this automatically;
// exported so callers can build a Config incrementally before calling New.
func (c *Config) Apply(opts ...Option) *Config {
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// WithQueuesMax bounds how many writer queues the registry may hold.
func WithQueuesMax(n int) Option {
	return func(c *Config) { c.QueuesMax = n }
}

// WithDefaultLinesPerQueue sets the slot count for queues created without
// an explicit size request.
func WithDefaultLinesPerQueue(n int64) Option {
	return func(c *Config) { c.DefaultLinesPerQueue = n }
}

// WithMinLevel sets the minimum admitted severity, including Emerg (which
// WithDefaults would otherwise treat as unset).
func WithMinLevel(l Level) Option {
	return func(c *Config) { c.SetMinLevel(l) }
}

// WithQueueOptions sets the default per-queue option bitmask (NonBlock,
// PrintLost, Prealloc, NoQueue) applied when Assign isn't given its own.
func WithQueueOptions(o ring.Options) Option {
	return func(c *Config) { c.Options = o }
}

// WithOutput sets the sink the merger writes formatted lines to.
func WithOutput(w WriteSyncer) Option {
	return func(c *Config) { c.Output = w }
}

// WithFormatter sets how each Record is rendered to bytes.
func WithFormatter(f Formatter) Option {
	return func(c *Config) { c.Formatter = f }
}

// WithIdleStrategy sets the merger's idle behavior once the bounded
// adaptive spin exhausts its retries.
func WithIdleStrategy(s waitutil.IdleStrategy) Option {
	return func(c *Config) { c.Idle = s }
}

// WithMode selects ThreadedMode, SyncMode, or NoopMode.
func WithMode(m Mode) Option {
	return func(c *Config) { c.Mode = m }
}

// WithSinkErrorHandler installs a callback invoked from the merger
// goroutine whenever a write to Output fails.
func WithSinkErrorHandler(fn func(error)) Option {
	return func(c *Config) { c.OnSinkError = fn }
}

// WithHook appends a post-formatting hook executed in the merger goroutine.
// Nil hooks are ignored.
func WithHook(h Hook) Option {
	return func(c *Config) {
		if h == nil {
			return
		}
		inner := c.Formatter
		c.Formatter = &hookFormatter{inner: inner, hook: h}
	}
}

// hookFormatter decorates a Formatter, invoking a Hook on every record
// immediately after the inner Formatter renders it, before the bytes reach
// the sink.
type hookFormatter struct {
	inner Formatter
	hook  Hook
}

func (h *hookFormatter) Format(dst []byte, rec *ring.Record) []byte {
	if h.inner != nil {
		dst = h.inner.Format(dst, rec)
	}
	if h.hook != nil {
		h.hook(rec)
	}
	return dst
}
