// logger.go: orchestrates the registry, merger, and sink into one Logger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/kestrel-log/kestrel/internal/merge"
	"github.com/kestrel-log/kestrel/internal/registry"
	"github.com/kestrel-log/kestrel/internal/ring"
)

// Logger is the top-level handle: it owns the queue registry, the
// background merger goroutine (absent in SyncMode/NoopMode), and the
// output sink. Writers are obtained from it with AssignWriteQueue or Spawn.
type Logger struct {
	config   *Config
	minLevel *AtomicLevel

	registry *registry.Registry
	merger   *merge.Merger

	running int32 // atomic: 1 while Log calls are accepted

	mergerStarted bool
}

// New builds a Logger from cfg, filling any zero-valued fields with
// defaults and then applying opts, so an Option always overrides a
// default rather than being overridden by one. Returns InvalidArgument if
// the result fails validation.
func New(cfg *Config, opts ...Option) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.WithDefaults()
	cfg.Apply(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		config:   cfg,
		minLevel: NewAtomicLevel(cfg.MinLevel),
		registry: registry.New(cfg.QueuesMax, cfg.DefaultLinesPerQueue, cfg.Options),
	}
	atomic.StoreInt32(&l.running, 1)

	if cfg.Mode == ThreadedMode {
		l.merger = merge.New(l.registry, cfg.Formatter, cfg.Output, cfg.Idle, l.onMergerError)
		go l.merger.Run()
		l.mergerStarted = true
	}
	return l, nil
}

func (l *Logger) onMergerError(err error) {
	wrapped := wrapError(err, ErrCodeWriteFailed, "kestrel: sink write failed, record dropped")
	if l.config.OnSinkError != nil {
		l.config.OnSinkError(wrapped)
		return
	}
	handleError(wrapped)
}

func (l *Logger) isRunning() bool { return atomic.LoadInt32(&l.running) == 1 }

// MinLevel returns the Logger's live minimum-severity filter, which can be
// changed at any time with AtomicLevel.SetLevel.
func (l *Logger) MinLevel() *AtomicLevel { return l.minLevel }

// AssignWriteQueue binds a new Writer to a queue, reusing the smallest free
// queue with capacity >= linesMax (0 meaning the configured default) or
// allocating a new one. Returns CapacityExhausted if the registry is full
// and none is free.
func (l *Logger) AssignWriteQueue(name string, linesMax int64, opts ring.Options) (*Writer, error) {
	if !l.isRunning() {
		return nil, newError(ErrCodeShutDown, "kestrel: logger is shut down")
	}
	q, err := l.registry.Assign(name, linesMax, opts)
	if err != nil {
		if err == registry.ErrCapacityExhausted {
			return nil, wrapError(err, ErrCodeCapacityExhausted, "kestrel: no free queue and registry is at capacity")
		}
		return nil, wrapError(err, ErrCodeInternal, "kestrel: assign failed")
	}
	return &Writer{l: l, queue: q}, nil
}

// ReleaseWriteQueue drains w's queue and returns it to the registry's reuse
// pool. w must not be used again afterward.
func (l *Logger) ReleaseWriteQueue(w *Writer) error {
	if w == nil || w.queue == nil {
		return newError(ErrCodeInvalidArgument, "kestrel: nil writer")
	}
	l.registry.Release(w.queue)
	return nil
}

// Spawn starts fn on its own goroutine with an auto-assigned Writer bound
// for its lifetime, and releases the queue unconditionally when fn returns
// or panics — the Go-native equivalent of a thread-exit scope guard, since
// nothing here can otherwise force a leaked goroutine to call Release.
// The returned channel is closed once the queue has been released.
func (l *Logger) Spawn(name string, linesMax int64, opts ring.Options, fn func(*Writer)) (<-chan struct{}, error) {
	w, err := l.AssignWriteQueue(name, linesMax, opts)
	if err != nil {
		return nil, err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer l.registry.Release(w.queue)
		fn(w)
	}()
	return done, nil
}

// Close stops admitting new records, drains every queue (waking the
// merger as needed), joins the merger goroutine, and returns. Subsequent
// Log calls observe ShutDown.
func (l *Logger) Close() error {
	if !atomic.CompareAndSwapInt32(&l.running, 1, 0) {
		return nil
	}
	for _, q := range l.registry.Queues() {
		for q.Pending() > 0 {
			l.registry.Wait().WakeOne()
			time.Sleep(100 * time.Microsecond)
		}
	}
	if l.mergerStarted {
		l.merger.Stop()
	}
	return nil
}

// Sync flushes and fsyncs the output sink, for callers that need
// durability guarantees beyond "written to the process's stdout buffer".
func (l *Logger) Sync() error {
	return l.config.Output.Sync()
}

// writeSync formats and writes one record inline on the caller's goroutine,
// for Logger instances configured with SyncMode.
func (l *Logger) writeSync(level Level, file, fn string, line int, msg []byte) error {
	var rec ring.Record
	rec.TimestampNS = time.Now().UnixNano()
	rec.WallTime = timecache.CachedTimeNano()
	rec.Level = level
	rec.File = file
	rec.Func = fn
	rec.Line = line
	rec.SetMsg(msg)

	buf := l.config.Formatter.Format(nil, &rec)
	if _, err := l.config.Output.Write(buf); err != nil {
		return wrapError(err, ErrCodeWriteFailed, "kestrel: sync write failed")
	}
	return nil
}
