package kestrel

import (
	stderrors "errors"
	"testing"

	"github.com/agilira/go-errors"
)

func TestIsShutDownAndCapacityExhaustedPredicates(t *testing.T) {
	shutdown := newError(ErrCodeShutDown, "logger is shut down")
	if !IsShutDown(shutdown) {
		t.Fatal("expected IsShutDown to recognize a ShutDown error")
	}
	if IsCapacityExhausted(shutdown) {
		t.Fatal("expected IsCapacityExhausted to reject a ShutDown error")
	}

	capErr := newError(ErrCodeCapacityExhausted, "registry is full")
	if !IsCapacityExhausted(capErr) {
		t.Fatal("expected IsCapacityExhausted to recognize a CapacityExhausted error")
	}
}

func TestWrapErrorPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := wrapError(cause, ErrCodeWriteFailed, "sink write failed")
	if wrapped.Cause != cause {
		t.Fatalf("expected wrapped error to retain the original cause, got %v", wrapped.Cause)
	}
}

func TestSetErrorHandlerRoutesInternalErrors(t *testing.T) {
	var captured *errors.Error
	SetErrorHandler(func(err *errors.Error) { captured = err })
	defer SetErrorHandler(nil)

	handleError(newError(ErrCodeInternal, "test failure"))
	if captured == nil {
		t.Fatal("expected custom error handler to receive the error")
	}
}
