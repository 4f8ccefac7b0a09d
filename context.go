// context.go: context.Context propagation for the per-goroutine Writer handle
//
// Go goroutines have no stable OS-thread identity, so the bound write queue
// handle that this library hands back from AssignWriteQueue cannot live in
// thread-local storage the way the original implementation keeps it. This
// file provides the idiomatic Go substitute: propagate *Writer (and a small
// set of pre-extracted fields) through context.Context.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import "context"

// ContextKey is a context.Context key type reserved for kestrel's own
// context values, avoiding collisions with application-defined keys.
type ContextKey string

// Common context keys applications use to stash request/trace identifiers
// picked up by ContextExtractor.
const (
	RequestIDKey ContextKey = "request_id"
	TraceIDKey   ContextKey = "trace_id"
	SpanIDKey    ContextKey = "span_id"
	UserIDKey    ContextKey = "user_id"
	SessionIDKey ContextKey = "session_id"
)

type writerContextKey struct{}

// ContextWithWriter returns a copy of ctx carrying w, so it can be recovered
// later with WriterFromContext without threading the handle through every
// function signature in a call chain.
func ContextWithWriter(ctx context.Context, w *Writer) context.Context {
	return context.WithValue(ctx, writerContextKey{}, w)
}

// WriterFromContext recovers a *Writer previously attached with
// ContextWithWriter.
func WriterFromContext(ctx context.Context) (*Writer, bool) {
	w, ok := ctx.Value(writerContextKey{}).(*Writer)
	return w, ok
}

// ContextExtractor selects which context keys are pulled into log fields.
// Scanning is bounded to the configured key set, not the full context chain.
type ContextExtractor struct {
	Keys map[ContextKey]string
}

// DefaultContextExtractor extracts the common request/trace/user identifiers.
var DefaultContextExtractor = &ContextExtractor{
	Keys: map[ContextKey]string{
		RequestIDKey: "request_id",
		TraceIDKey:   "trace_id",
		SpanIDKey:    "span_id",
		UserIDKey:    "user_id",
		SessionIDKey: "session_id",
	},
}

// ScopedWriter pairs a *Writer with fields extracted once from a context,
// so a request handler can log many times without re-walking ctx.Value.
type ScopedWriter struct {
	w      *Writer
	fields []Field
}

// WithContext extracts DefaultContextExtractor's keys from ctx and returns a
// ScopedWriter that appends them after the message of every subsequent log
// call.
func (w *Writer) WithContext(ctx context.Context) *ScopedWriter {
	return w.WithContextExtractor(ctx, DefaultContextExtractor)
}

// WithContextExtractor is WithContext with a caller-supplied extractor.
func (w *Writer) WithContextExtractor(ctx context.Context, extractor *ContextExtractor) *ScopedWriter {
	var fields []Field
	if len(extractor.Keys) > 0 {
		fields = make([]Field, 0, len(extractor.Keys))
	}
	for key, name := range extractor.Keys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, Str(name, v))
		}
	}
	return &ScopedWriter{w: w, fields: fields}
}

// With returns a ScopedWriter carrying both the previously extracted fields
// and the additional ones given.
func (s *ScopedWriter) With(fields ...Field) *ScopedWriter {
	merged := make([]Field, 0, len(s.fields)+len(fields))
	merged = append(merged, s.fields...)
	merged = append(merged, fields...)
	return &ScopedWriter{w: s.w, fields: merged}
}

// Log emits a record through the underlying Writer, with the context-derived
// fields appended after the formatted message. file/fn/line identify the caller the way the
// non-scoped per-level helpers on Writer do.
func (s *ScopedWriter) Log(level Level, file, fn string, line int, format string, args ...any) error {
	return s.w.logWithFields(level, file, fn, line, format, args, s.fields)
}
