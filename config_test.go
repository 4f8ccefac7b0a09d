package kestrel

import "testing"

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	c := NewConfig()
	if c.QueuesMax <= 0 {
		t.Fatal("expected a positive default QueuesMax")
	}
	if c.DefaultLinesPerQueue <= 0 {
		t.Fatal("expected a positive default DefaultLinesPerQueue")
	}
	if c.Output == nil || c.Formatter == nil || c.Idle == nil {
		t.Fatal("expected Output, Formatter, and Idle to be defaulted")
	}
	if c.MinLevel != Info {
		t.Fatalf("expected default MinLevel Info, got %v", c.MinLevel)
	}
}

func TestConfigSetMinLevelSurvivesDefaulting(t *testing.T) {
	c := &Config{}
	c.SetMinLevel(Emerg)
	c.WithDefaults()
	if c.MinLevel != Emerg {
		t.Fatalf("expected explicit Emerg to survive WithDefaults, got %v", c.MinLevel)
	}
}

func TestConfigValidateRejectsBadFields(t *testing.T) {
	c := NewConfig()
	c.QueuesMax = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for QueuesMax <= 0")
	}

	c = NewConfig()
	c.DefaultLinesPerQueue = -1
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for DefaultLinesPerQueue <= 0")
	}

	c = NewConfig()
	c.MinLevel = Level(200)
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an out-of-range MinLevel")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	// MinLevel is the one field WithDefaults won't silently repair: a
	// nonzero out-of-range value passes through untouched into Validate.
	c := &Config{MinLevel: Level(200)}
	if _, err := New(c); err == nil {
		t.Fatal("expected New to reject an invalid config")
	}
}
