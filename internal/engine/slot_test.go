package engine

import (
	"errors"
	"testing"
	"time"
)

func TestParseSlot(t *testing.T) {
	for _, name := range []string{"morning", "noon", "evening", "night"} {
		slot, err := ParseSlot(name)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", name, err)
		}
		if slot.String() != name {
			t.Errorf("expected %q, got %q", name, slot.String())
		}
	}
}

func TestParseSlotInvalid(t *testing.T) {
	_, err := ParseSlot("dawn")
	if err == nil {
		t.Fatal("expected error for unknown slot")
	}
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}

	_, err = ParseSlot("")
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot for empty name, got %v", err)
	}
}

func TestSlotAt(t *testing.T) {
	cases := []struct {
		hour int
		want Slot
	}{
		{5, Morning},
		{9, Morning},
		{11, Morning},
		{12, Noon},
		{16, Noon},
		{17, Evening},
		{20, Evening},
		{21, Night},
		{23, Night},
		{0, Night},
		{4, Night},
	}
	for _, c := range cases {
		at := time.Date(2026, 8, 28, c.hour, 30, 0, 0, time.Local)
		if got := SlotAt(at); got != c.want {
			t.Errorf("hour %d: expected %s, got %s", c.hour, c.want, got)
		}
	}
}

func TestWeightProfilesInRange(t *testing.T) {
	for _, slot := range Slots() {
		w := slot.Profile()
		for name, v := range map[string]float64{
			"relevance":  w.Relevance,
			"freshness":  w.Freshness,
			"engagement": w.Engagement,
			"quality":    w.Quality,
			"timing":     w.Timing,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%s %s weight out of [0,1]: %f", slot, name, v)
			}
		}
	}
}
