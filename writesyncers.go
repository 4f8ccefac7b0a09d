// writesyncers.go: concrete WriteSyncer destinations
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"os"
	"sync"
)

// FileWriteSyncer wraps an *os.File with mutex-guarded Write/Sync, for
// callers that want explicit control over the file handle instead of going
// through WrapWriter(os.Stdout)-style defaults.
type FileWriteSyncer struct {
	file *os.File
	mu   sync.Mutex
}

// NewFileWriteSyncer opens filename for append, creating it if needed.
func NewFileWriteSyncer(filename string) (*FileWriteSyncer, error) {
	// #nosec G304 - path is supplied by the application, not untrusted input
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	return &FileWriteSyncer{file: file}, nil
}

func (f *FileWriteSyncer) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Write(p)
}

func (f *FileWriteSyncer) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Sync()
}

// Close closes the underlying file.
func (f *FileWriteSyncer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}

// BufferedWriteSyncer adds a fixed-size write-behind buffer in front of
// any WriteSyncer, flushing on Sync() or when the buffer fills.
type BufferedWriteSyncer struct {
	writer WriteSyncer
	buffer []byte
	pos    int
	mu     sync.Mutex
}

// NewBufferedWriteSyncer wraps writer with a bufferSize-byte buffer.
func NewBufferedWriteSyncer(writer WriteSyncer, bufferSize int) *BufferedWriteSyncer {
	return &BufferedWriteSyncer{writer: writer, buffer: make([]byte, bufferSize)}
}

func (b *BufferedWriteSyncer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	totalWritten := 0
	for len(p) > 0 {
		spaceLeft := len(b.buffer) - b.pos
		if spaceLeft == 0 {
			if err := b.flushUnsafe(); err != nil {
				return totalWritten, err
			}
			spaceLeft = len(b.buffer)
		}

		toCopy := len(p)
		if toCopy > spaceLeft {
			toCopy = spaceLeft
		}
		copy(b.buffer[b.pos:], p[:toCopy])
		b.pos += toCopy
		p = p[toCopy:]
		totalWritten += toCopy
	}
	return totalWritten, nil
}

// Sync flushes the buffer then syncs the underlying writer.
func (b *BufferedWriteSyncer) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.flushUnsafe(); err != nil {
		return err
	}
	return b.writer.Sync()
}

func (b *BufferedWriteSyncer) flushUnsafe() error {
	if b.pos == 0 {
		return nil
	}
	_, err := b.writer.Write(b.buffer[:b.pos])
	b.pos = 0
	return err
}

// DiscardWriteSyncer discards all writes. Useful for benchmarks and tests.
type DiscardWriteSyncer struct{}

func (d *DiscardWriteSyncer) Write(p []byte) (n int, err error) { return len(p), nil }
func (d *DiscardWriteSyncer) Sync() error                       { return nil }

// Common WriteSyncer instances.
var (
	StdoutWriteSyncer = WrapWriter(os.Stdout)
	StderrWriteSyncer = WrapWriter(os.Stderr)
	DiscardSyncer     = &DiscardWriteSyncer{}
)
