// presets.go: ready-made Config/New combinations for common use cases
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"os"

	"github.com/kestrel-log/kestrel/internal/ring"
)

// NewDevelopment returns a Logger writing human-readable text to stdout at
// Debug and above, with small queues suited to immediate feedback rather
// than throughput.
func NewDevelopment() (*Logger, error) {
	return New(&Config{
		QueuesMax:            32,
		DefaultLinesPerQueue: 256,
		Output:               WrapWriter(os.Stdout),
		Formatter:            NewTextFormatter(),
		Idle:                 HybridStrategy,
	}, WithMinLevel(Debug))
}

// NewProduction returns a Logger writing newline-delimited JSON to stdout
// at Info and above, with larger queues and PrintLost so silent drops
// under load are still surfaced as a single summary record.
func NewProduction() (*Logger, error) {
	return New(&Config{
		QueuesMax:            128,
		DefaultLinesPerQueue: 4096,
		Output:               WrapWriter(os.Stdout),
		Formatter:            NewJSONFormatter(),
		Idle:                 BalancedStrategy,
		Options:              ring.PrintLost,
	}, WithMinLevel(Info))
}

// NewUltraFast returns a Logger tuned for maximum writer-side throughput:
// NonBlock queues (producers never wait on a stalled reader) writing to
// stderr, with a spinning idle strategy for minimum emission latency.
func NewUltraFast() (*Logger, error) {
	return New(&Config{
		QueuesMax:            256,
		DefaultLinesPerQueue: 16384,
		Output:               WrapWriter(os.Stderr),
		Formatter:            NewTextFormatter(),
		Idle:                 SpinningStrategy,
		Options:              ring.NonBlock | ring.PrintLost | ring.Prealloc,
	}, WithMinLevel(Info))
}

// NewUltraFastFile is NewUltraFast writing to filePath instead of stderr,
// and rendering newline-delimited JSON instead of text.
func NewUltraFastFile(filePath string) (*Logger, error) {
	fw, err := NewFileWriteSyncer(filePath)
	if err != nil {
		return nil, wrapError(err, ErrCodeInvalidArgument, "kestrel: cannot open log file")
	}
	return New(&Config{
		QueuesMax:            256,
		DefaultLinesPerQueue: 16384,
		Output:               fw,
		Formatter:            NewJSONFormatter(),
		Idle:                 SpinningStrategy,
		Options:              ring.NonBlock | ring.PrintLost | ring.Prealloc,
	}, WithMinLevel(Info))
}

// NewSynchronous returns a Logger that formats and writes every record
// inline on the caller's goroutine, bypassing the ring/merge machinery.
// Suited to tests, CLIs, and any single-threaded program where the
// background merger's overhead isn't worth paying for.
func NewSynchronous(output WriteSyncer) (*Logger, error) {
	if output == nil {
		output = WrapWriter(os.Stdout)
	}
	return New(&Config{
		Output:    output,
		Formatter: NewTextFormatter(),
		Mode:      SyncMode,
	}, WithMinLevel(Info))
}

// NewDiscard returns a Logger whose every record is dropped before
// formatting, for tests that need a live Logger but no output.
func NewDiscard() (*Logger, error) {
	return New(&Config{Mode: NoopMode})
}
