package kestrel

import (
	"testing"

	"github.com/kestrel-log/kestrel/internal/ring"
)

func TestWithHookRunsBeforeWrite(t *testing.T) {
	var seen []string
	cfg := NewConfig()
	cfg.Apply(WithHook(func(rec *ring.Record) {
		seen = append(seen, string(rec.Msg[:rec.MsgLen]))
	}))

	f := cfg.Formatter
	out := f.Format(nil, rec(Info, "hooked"))
	if len(seen) != 1 || seen[0] != "hooked" {
		t.Fatalf("expected hook to observe the record, got %v", seen)
	}
	if len(out) == 0 {
		t.Fatal("expected the inner formatter to still produce output")
	}
}

func TestWithHookNilIsIgnored(t *testing.T) {
	cfg := NewConfig()
	before := cfg.Formatter
	cfg.Apply(WithHook(nil))
	if cfg.Formatter != before {
		t.Fatal("expected a nil hook to leave the formatter untouched")
	}
}

func TestApplyOverridesDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.WithDefaults()
	cfg.Apply(WithQueuesMax(7), WithMode(SyncMode))
	if cfg.QueuesMax != 7 {
		t.Fatalf("expected QueuesMax override to stick, got %d", cfg.QueuesMax)
	}
	if cfg.Mode != SyncMode {
		t.Fatalf("expected Mode override to stick, got %v", cfg.Mode)
	}
}
