package core

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateGUID(t *testing.T) {
	id, err := GenerateGUID("msg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "msg-") || len(id) != len("msg-")+guidLength {
		t.Fatalf("guid: %q", id)
	}
	for _, r := range id[len("msg-"):] {
		if !strings.ContainsRune(guidAlphabet, r) {
			t.Fatalf("guid char outside alphabet: %q", id)
		}
	}

	// Trailing dash in the prefix is normalized away.
	id, err = GenerateGUID("evt-")
	if err != nil || !strings.HasPrefix(id, "evt-") || strings.HasPrefix(id, "evt--") {
		t.Fatalf("guid: %q %v", id, err)
	}
}

func TestMustGUIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := MustGUID("rom")
		if seen[id] {
			t.Fatalf("duplicate guid: %s", id)
		}
		seen[id] = true
	}
}

func TestISOStringOrderIsChronological(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 9, 59, 59, 900e6, time.UTC)
	t1 := t0.Add(200 * time.Millisecond)

	a := FormatISO(t0)
	b := FormatISO(t1)
	if len(a) != len(b) {
		t.Fatalf("layout not fixed-width: %q %q", a, b)
	}
	if !(a < b) {
		t.Fatalf("order: %q !< %q", a, b)
	}
}

func TestFormatISOConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := FormatISO(time.Date(2026, 8, 28, 11, 0, 0, 0, loc))
	if got != "2026-08-28T10:00:00.000Z" {
		t.Fatalf("iso: %q", got)
	}
}

func TestParseISORoundTrip(t *testing.T) {
	iso := "2026-08-28T10:00:00.123Z"
	parsed := ParseISO(iso)
	if FormatISO(parsed) != iso {
		t.Fatalf("round trip: %q", FormatISO(parsed))
	}
	if !ParseISO("not a timestamp").IsZero() {
		t.Fatal("bad input must parse to zero")
	}
}

func TestMinuteAndDateOf(t *testing.T) {
	iso := "2026-08-28T10:00:59.999Z"
	if MinuteOf(iso) != "2026-08-28T10:00" {
		t.Fatalf("minute: %q", MinuteOf(iso))
	}
	if DateOf(iso) != "2026-08-28" {
		t.Fatalf("date: %q", DateOf(iso))
	}
	if MinuteOf("short") != "short" || DateOf("short") != "short" {
		t.Fatal("short inputs pass through")
	}
}
