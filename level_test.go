package kestrel

import "testing"

func TestLevelOrderingIsDescendingSeverity(t *testing.T) {
	if !(Emerg < Alert && Alert < Critical && Critical < Error && Error < Warning &&
		Warning < Notice && Notice < Info && Info < Debug && Debug < Okay &&
		Okay < Trace && Trace < Oops) {
		t.Fatal("expected severities to be strictly ascending from Emerg to Oops")
	}
}

func TestAtomicLevelAdmitsMirrorsDescendingSeverity(t *testing.T) {
	al := NewAtomicLevel(Warning)
	cases := []struct {
		level Level
		want  bool
	}{
		{Emerg, true},
		{Error, true},
		{Warning, true},
		{Notice, false},
		{Oops, false},
	}
	for _, c := range cases {
		if got := al.Admits(c.level); got != c.want {
			t.Errorf("Admits(%v) = %v, want %v", c.level, got, c.want)
		}
	}
}

func TestParseLevelAcceptsAliasesCaseInsensitively(t *testing.T) {
	cases := map[string]Level{
		"EMERG":     Emerg,
		"Emergency": Emerg,
		"crit":      Critical,
		"  warn  ":  Warning,
		"":          Info,
		"OK":        Okay,
		"oops":      Oops,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := ParseLevel("not-a-level"); err == nil {
		t.Fatal("expected an error for an unrecognized level name")
	}
}

func TestAtomicLevelSetLevelIsObservedImmediately(t *testing.T) {
	al := NewAtomicLevel(Info)
	if al.Level() != Info {
		t.Fatalf("expected initial level Info, got %v", al.Level())
	}
	al.SetLevel(Debug)
	if al.Level() != Debug {
		t.Fatalf("expected updated level Debug, got %v", al.Level())
	}
	if al.String() != "debug" {
		t.Fatalf("expected String() == debug, got %q", al.String())
	}
}
