package kestrel

import (
	"strings"
	"testing"

	"github.com/kestrel-log/kestrel/internal/ring"
)

func rec(level Level, msg string) *ring.Record {
	r := &ring.Record{Level: level, File: "f.go", Line: 42}
	r.SetMsg([]byte(msg))
	return r
}

func TestTextFormatterEscapesNewlineInjection(t *testing.T) {
	f := NewTextFormatter()
	out := string(f.Format(nil, rec(Info, "line1\nlevel=emerg msg=forged")))
	if strings.Contains(out, "\n") && !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected the only newline to be the trailing line terminator, got %q", out)
	}
	if !strings.Contains(out, `\n`) {
		t.Fatalf("expected escaped newline sequence in output, got %q", out)
	}
}

func TestTextFormatterEscapesQuotesAndBackslashes(t *testing.T) {
	f := NewTextFormatter()
	out := string(f.Format(nil, rec(Info, `say "hi" \ done`)))
	if !strings.Contains(out, `\"hi\"`) {
		t.Fatalf("expected escaped quotes, got %q", out)
	}
	if !strings.Contains(out, `\\`) {
		t.Fatalf("expected escaped backslash, got %q", out)
	}
}

func TestJSONFormatterProducesValidKeyOrder(t *testing.T) {
	f := NewJSONFormatter()
	out := string(f.Format(nil, rec(Error, "boom")))
	if !strings.HasPrefix(out, `{"time":"`) {
		t.Fatalf("expected JSON object to start with time field, got %q", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Fatalf("expected level field, got %q", out)
	}
	if !strings.Contains(out, `"msg":"boom"`) {
		t.Fatalf("expected msg field, got %q", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Fatalf("expected newline-delimited JSON object, got %q", out)
	}
}

func TestJSONFormatterEscapesInjectionAttempt(t *testing.T) {
	f := NewJSONFormatter()
	out := string(f.Format(nil, rec(Info, `inject","level":"emerg`)))
	if strings.Contains(out, `","level":"emerg`) {
		t.Fatalf("unescaped quote allowed field injection: %q", out)
	}
}
