package kestrel

import (
	"errors"
	"testing"
	"time"
)

func TestAppendFieldRendersEachKind(t *testing.T) {
	cases := []struct {
		name string
		f    Field
		want string
	}{
		{"string", Str("k", "v"), " k=v"},
		{"int", Int("n", -7), " n=-7"},
		{"uint", Uint64("u", 42), " u=42"},
		{"float", Float64("f", 1.5), " f=1.5"},
		{"bool-true", Bool("b", true), " b=true"},
		{"bool-false", Bool("b", false), " b=false"},
		{"dur", Dur("d", 2*time.Second), " d=2s"},
		{"bytes", Bytes("by", []byte("raw")), " by=raw"},
		{"secret", Secret("pw", "hunter2"), " pw=[REDACTED]"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := string(appendField(nil, c.f))
			if got != c.want {
				t.Errorf("appendField(%+v) = %q, want %q", c.f, got, c.want)
			}
		})
	}
}

func TestAppendFieldErrorKind(t *testing.T) {
	got := string(appendField(nil, ErrorField(errors.New("boom"))))
	if got != " error=boom" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendFieldSecretNeverLeaksValue(t *testing.T) {
	got := string(appendField(nil, Secret("token", "super-secret-value")))
	if got != " token=[REDACTED]" {
		t.Fatalf("expected redaction, got %q", got)
	}
}

func TestFieldAccessorsMatchConstructor(t *testing.T) {
	f := Int64("n", 99)
	if !f.IsInt() || f.IntValue() != 99 {
		t.Fatalf("expected IsInt/IntValue to reflect Int64 field, got %v/%d", f.IsInt(), f.IntValue())
	}
	if f.StringValue() != "" {
		t.Fatalf("expected empty StringValue for a non-string field, got %q", f.StringValue())
	}
}

func TestErrFieldHandlesNil(t *testing.T) {
	f := Err(nil)
	if f.StringValue() != "" {
		t.Fatalf("expected empty string for a nil error field, got %q", f.StringValue())
	}
}
