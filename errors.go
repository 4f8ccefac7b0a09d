// errors.go: structured error values for the kestrel logging library
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
)

// Error codes surfaced by kestrel. Every operation that can fail returns one
// of these, wrapped with caller/timestamp context.
const (
	ErrCodeInvalidArgument    errors.ErrorCode = "KESTREL_INVALID_ARGUMENT"
	ErrCodeCapacityExhausted  errors.ErrorCode = "KESTREL_CAPACITY_EXHAUSTED"
	ErrCodeShutDown           errors.ErrorCode = "KESTREL_SHUT_DOWN"
	ErrCodeWouldBlock         errors.ErrorCode = "KESTREL_WOULD_BLOCK"
	ErrCodeInternal           errors.ErrorCode = "KESTREL_INTERNAL"
	ErrCodeWriterNotAvailable errors.ErrorCode = "KESTREL_WRITER_NOT_AVAILABLE"
	ErrCodeWriteFailed        errors.ErrorCode = "KESTREL_WRITE_FAILED"
)

// ErrorHandler processes errors raised internally by the logger (for example
// a sink write failure observed by the merger goroutine, which has no caller
// to return an error to).
type ErrorHandler func(err *errors.Error)

var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "[kestrel] %s: %s\n", err.Code, err.Message)
	if err.Cause != nil {
		fmt.Fprintf(os.Stderr, "[kestrel] caused by: %v\n", err.Cause)
	}
}

var currentErrorHandler = defaultErrorHandler

// SetErrorHandler installs a custom handler for errors raised outside the
// call path of a Log invocation.
func SetErrorHandler(handler ErrorHandler) {
	if handler == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = handler
}

// GetErrorHandler returns the currently installed error handler.
func GetErrorHandler() ErrorHandler {
	return currentErrorHandler
}

func handleError(err *errors.Error) {
	if err == nil {
		return
	}
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context["go_version"] = runtime.Version()
	err.Context["goroutines"] = runtime.NumGoroutine()
	currentErrorHandler(err)
}

// newError builds a kestrel error with standard context (component, time,
// caller) attached, mirroring the caller-capture style used throughout this
// module's hot paths.
func newError(code errors.ErrorCode, message string) *errors.Error {
	err := errors.New(code, message).
		WithContext("component", "kestrel").
		WithContext("timestamp", time.Now().UTC())

	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_ = err.WithContext("caller_func", fn.Name())
		}
		_ = err.WithContext("caller_file", file)
		_ = err.WithContext("caller_line", line)
	}
	return err
}

func wrapError(cause error, code errors.ErrorCode, message string) *errors.Error {
	err := errors.Wrap(cause, code, message).
		WithContext("component", "kestrel").
		WithContext("timestamp", time.Now().UTC())
	return err
}

// IsShutDown reports whether err represents a logger/registry that has
// already been torn down.
func IsShutDown(err error) bool { return errors.HasCode(err, ErrCodeShutDown) }

// IsCapacityExhausted reports whether err represents a queue registry that
// is at capacity with no free queue to reuse.
func IsCapacityExhausted(err error) bool { return errors.HasCode(err, ErrCodeCapacityExhausted) }

// IsWouldBlock reports whether err represents a NonBlock publish that found
// no space after its single short retry and dropped the record.
func IsWouldBlock(err error) bool { return errors.HasCode(err, ErrCodeWouldBlock) }

func init() {
	codes := []errors.ErrorCode{
		ErrCodeInvalidArgument, ErrCodeCapacityExhausted, ErrCodeShutDown,
		ErrCodeWouldBlock, ErrCodeInternal, ErrCodeWriterNotAvailable,
		ErrCodeWriteFailed,
	}
	for _, code := range codes {
		if len(string(code)) < 9 || string(code)[:8] != "KESTREL_" {
			panic(fmt.Sprintf("error code %s does not follow the KESTREL_ prefix convention", code))
		}
	}
}
