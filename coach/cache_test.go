package coach

import (
	"strings"
	"testing"
	"time"
)

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	a := Fingerprint("hey, are we still on for tomorrow?", ScenarioPersonal, 40, "old friend", ProviderGemini)
	b := Fingerprint("hey, are we still on for tomorrow?", ScenarioPersonal, 40, "old friend", ProviderGemini)
	if a != b {
		t.Fatalf("same inputs produced different keys: %q vs %q", a, b)
	}
}

func TestFingerprint_DistinguishesInputs(t *testing.T) {
	t.Parallel()

	base := Fingerprint("hello there, long time no see", ScenarioPersonal, 40, "", ProviderGemini)
	variants := []string{
		Fingerprint("hello there, long time no seen", ScenarioPersonal, 40, "", ProviderGemini),
		Fingerprint("hello there, long time no see", ScenarioRomantic, 40, "", ProviderGemini),
		Fingerprint("hello there, long time no see", ScenarioPersonal, 41, "", ProviderGemini),
		Fingerprint("hello there, long time no see", ScenarioPersonal, 40, "ex", ProviderGemini),
		Fingerprint("hello there, long time no see", ScenarioPersonal, 40, "", ProviderClaude),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collided with base key", i)
		}
	}
}

func TestFingerprint_OnlyHistoryHeadMatters(t *testing.T) {
	t.Parallel()

	head := strings.Repeat("x", 100)
	a := Fingerprint(head+"tail one", ScenarioPersonal, 50, "", ProviderGemini)
	b := Fingerprint(head+"a completely different tail", ScenarioPersonal, 50, "", ProviderGemini)
	if a != b {
		t.Fatalf("keys differ despite identical first 100 bytes")
	}
}

func TestResponseCache_TTL(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(5 * time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("k", Normalize(nil))
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("fresh entry missing")
	}

	now = now.Add(4 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired early")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry survived past TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted, Len=%d", c.Len())
	}
}

func TestResponseCache_ClearAndLen(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(time.Minute)
	c.Put("a", ThreadlyResponse{})
	c.Put("b", ThreadlyResponse{})
	if c.Len() != 2 {
		t.Fatalf("Len=%d, want 2", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len=%d after Clear, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry survived Clear")
	}
}
