package kestrel

import (
	"context"
	"strings"
	"testing"
)

func TestContextWithWriterRoundTrip(t *testing.T) {
	l, _ := newBufferLogger(t)
	w, err := l.AssignWriteQueue("ctx", 0, 0)
	if err != nil {
		t.Fatalf("AssignWriteQueue: %v", err)
	}
	ctx := ContextWithWriter(context.Background(), w)
	got, ok := WriterFromContext(ctx)
	if !ok || got != w {
		t.Fatal("expected WriterFromContext to recover the exact writer stored")
	}
}

func TestWriterFromContextMissing(t *testing.T) {
	if _, ok := WriterFromContext(context.Background()); ok {
		t.Fatal("expected no writer in a bare context")
	}
}

func TestScopedWriterExtractsConfiguredKeys(t *testing.T) {
	l, buf := newBufferLogger(t)
	w, err := l.AssignWriteQueue("ctx", 0, 0)
	if err != nil {
		t.Fatalf("AssignWriteQueue: %v", err)
	}
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	sw := w.WithContext(ctx)
	if err := sw.Log(Info, "f.go", "f", 1, "handled %s", "request"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "request_id=req-123") {
		t.Fatalf("expected extracted request_id field, got %q", out)
	}
	if !strings.Contains(out, "handled request") {
		t.Fatalf("expected the formatted message, got %q", out)
	}
}

func TestScopedWriterWithAppendsAdditionalFields(t *testing.T) {
	l, buf := newBufferLogger(t)
	w, err := l.AssignWriteQueue("ctx", 0, 0)
	if err != nil {
		t.Fatalf("AssignWriteQueue: %v", err)
	}
	sw := w.WithContext(context.Background()).With(Str("extra", "value"))
	if err := sw.Log(Info, "f.go", "f", 1, "msg"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !strings.Contains(buf.String(), "extra=value") {
		t.Fatalf("expected appended field in output, got %q", buf.String())
	}
}
