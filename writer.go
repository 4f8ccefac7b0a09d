// writer.go: the per-thread handle bound to one writer queue
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"fmt"
	"runtime"

	"github.com/kestrel-log/kestrel/internal/ring"
)

// Writer is the handle a goroutine holds after AssignWriteQueue, bound to
// exactly one writer queue until (*Logger).ReleaseWriteQueue. Because goroutines have no
// stable OS-thread identity, this handle is the Go-native substitute for
// thread-local queue binding: callers hold it directly or carry it through
// a context.Context with ContextWithWriter.
type Writer struct {
	l     *Logger
	queue *ring.Queue
	buf   []byte
}

// Log formats format/args and publishes it at level, tagging the record
// with the caller's file, function, and line. Returns an ErrCodeShutDown
// error if the logger has been closed, or an ErrCodeWouldBlock error
// wrapping ring.ErrWouldBlock if the bound queue is full and carries
// NonBlock.
func (w *Writer) Log(level Level, format string, args ...any) error {
	file, fn, line := callerInfo(2)
	return w.logWithFields(level, file, fn, line, format, args, nil)
}

func (w *Writer) logWithFields(level Level, file, fn string, line int, format string, args []any, fields []Field) error {
	if w.l.config.Mode == NoopMode {
		return nil
	}
	if !w.l.minLevel.Admits(level) {
		return nil
	}
	if !w.l.isRunning() {
		return newError(ErrCodeShutDown, "kestrel: logger is shut down")
	}

	w.buf = fmt.Appendf(w.buf[:0], format, args...)
	for _, f := range fields {
		w.buf = appendField(w.buf, f)
	}

	if w.l.config.Mode == SyncMode {
		return w.l.writeSync(level, file, fn, line, w.buf)
	}

	if err := w.queue.Publish(w.l.registry.Wait(), level, file, fn, line, w.buf); err != nil {
		if err == ring.ErrWouldBlock {
			return wrapError(err, ErrCodeWouldBlock, "kestrel: queue full, record dropped")
		}
		return wrapError(err, ErrCodeInternal, "kestrel: publish failed")
	}
	return nil
}

// The 11 per-level convenience methods, named after the severities they
// publish at.

func (w *Writer) Emergf(format string, args ...any) error    { return w.logAt(Emerg, format, args) }
func (w *Writer) Alertf(format string, args ...any) error    { return w.logAt(Alert, format, args) }
func (w *Writer) Criticalf(format string, args ...any) error { return w.logAt(Critical, format, args) }
func (w *Writer) Errorf(format string, args ...any) error    { return w.logAt(Error, format, args) }
func (w *Writer) Warningf(format string, args ...any) error  { return w.logAt(Warning, format, args) }
func (w *Writer) Noticef(format string, args ...any) error   { return w.logAt(Notice, format, args) }
func (w *Writer) Infof(format string, args ...any) error     { return w.logAt(Info, format, args) }
func (w *Writer) Debugf(format string, args ...any) error    { return w.logAt(Debug, format, args) }
func (w *Writer) Okayf(format string, args ...any) error     { return w.logAt(Okay, format, args) }
func (w *Writer) Tracef(format string, args ...any) error    { return w.logAt(Trace, format, args) }
func (w *Writer) Oopsf(format string, args ...any) error     { return w.logAt(Oops, format, args) }

func (w *Writer) logAt(level Level, format string, args []any) error {
	file, fn, line := callerInfo(3)
	return w.logWithFields(level, file, fn, line, format, args, nil)
}

// Enabled reports whether level would actually be admitted and published,
// letting a caller skip expensive argument construction entirely — the Go
// substitute for the no-op build's "arguments not evaluated" guarantee,
// which Go's eager call-argument evaluation cannot otherwise provide.
func (w *Writer) Enabled(level Level) bool {
	if w.l.config.Mode == NoopMode {
		return false
	}
	return w.l.minLevel.Admits(level) && w.l.isRunning()
}

// With returns a ScopedWriter that appends fields after the message of every
// subsequent log call, without re-deriving them from a context.
func (w *Writer) With(fields ...Field) *ScopedWriter {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &ScopedWriter{w: w, fields: cp}
}

// callerInfo captures the file, function name, and line of the caller
// skip frames above this function.
func callerInfo(skip int) (file, fn string, line int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", "", 0
	}
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return file, fn, line
}
