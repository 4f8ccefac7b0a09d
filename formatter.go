// formatter.go: turns a Record into an output line; stdout/file formatting
// is explicitly a collaborator, not part of the ring/merge core.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kestrel

import (
	"strconv"
	"time"

	"github.com/kestrel-log/kestrel/internal/merge"
	"github.com/kestrel-log/kestrel/internal/ring"
)

// Formatter turns one Record into an output byte sequence, appending to dst
// and returning the extended slice. Implementations must not retain dst or
// the Record past the call; the merger reuses both across emissions.
type Formatter = merge.Formatter

// TextFormatter renders records as human-readable key=value lines, with
// control characters and quotes in the message escaped to prevent log
// injection via attacker-controlled strings reaching Msg.
type TextFormatter struct {
	// TimeFormat is passed to time.Time.AppendFormat for the wall-clock
	// timestamp. Defaults to time.RFC3339Nano when empty.
	TimeFormat string
}

// NewTextFormatter returns a TextFormatter with RFC3339Nano timestamps.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimeFormat: time.RFC3339Nano}
}

// Format implements Formatter.
func (f *TextFormatter) Format(dst []byte, rec *ring.Record) []byte {
	layout := f.TimeFormat
	if layout == "" {
		layout = time.RFC3339Nano
	}
	dst = append(dst, "time="...)
	dst = time.Unix(0, rec.WallTime).UTC().AppendFormat(dst, layout)
	dst = append(dst, " level="...)
	dst = append(dst, rec.Level.String()...)
	if rec.File != "" {
		dst = append(dst, " caller="...)
		dst = append(dst, rec.File...)
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(rec.Line), 10)
	}
	dst = append(dst, " msg="...)
	dst = appendQuoted(dst, rec.Msg[:rec.MsgLen])
	dst = append(dst, '\n')
	return dst
}

// appendQuoted appends msg to dst wrapped in double quotes, escaping
// quotes, backslashes, and control characters (including the newlines an
// attacker-controlled message could use to forge additional log lines).
func appendQuoted(dst, msg []byte) []byte {
	dst = append(dst, '"')
	for _, b := range msg {
		switch {
		case b == '"' || b == '\\':
			dst = append(dst, '\\', b)
		case b == '\n':
			dst = append(dst, '\\', 'n')
		case b == '\r':
			dst = append(dst, '\\', 'r')
		case b == '\t':
			dst = append(dst, '\\', 't')
		case b < 0x20:
			dst = append(dst, '\\', 'x')
			const hex = "0123456789abcdef"
			dst = append(dst, hex[b>>4], hex[b&0xf])
		default:
			dst = append(dst, b)
		}
	}
	return append(dst, '"')
}

// JSONFormatter renders records as newline-delimited JSON objects.
type JSONFormatter struct{}

// NewJSONFormatter returns a ready-to-use JSONFormatter.
func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

// Format implements Formatter.
func (f *JSONFormatter) Format(dst []byte, rec *ring.Record) []byte {
	dst = append(dst, `{"time":"`...)
	dst = time.Unix(0, rec.WallTime).UTC().AppendFormat(dst, time.RFC3339Nano)
	dst = append(dst, `","level":"`...)
	dst = append(dst, rec.Level.String()...)
	dst = append(dst, '"')
	if rec.File != "" {
		dst = append(dst, `,"caller":"`...)
		dst = appendJSONEscaped(dst, []byte(rec.File))
		dst = append(dst, `:`...)
		dst = strconv.AppendInt(dst, int64(rec.Line), 10)
		dst = append(dst, '"')
	}
	dst = append(dst, `,"msg":"`...)
	dst = appendJSONEscaped(dst, rec.Msg[:rec.MsgLen])
	dst = append(dst, '"', '}', '\n')
	return dst
}

func appendJSONEscaped(dst, msg []byte) []byte {
	for _, b := range msg {
		switch {
		case b == '"' || b == '\\':
			dst = append(dst, '\\', b)
		case b == '\n':
			dst = append(dst, '\\', 'n')
		case b == '\r':
			dst = append(dst, '\\', 'r')
		case b == '\t':
			dst = append(dst, '\\', 't')
		case b < 0x20:
			dst = append(dst, '\\', 'u', '0', '0')
			const hex = "0123456789abcdef"
			dst = append(dst, hex[b>>4], hex[b&0xf])
		default:
			dst = append(dst, b)
		}
	}
	return dst
}
