package engine

import (
	"errors"
	"fmt"
	"time"
)

// Slot is one of the four fixed daily periods that drive weight selection.
type Slot int

const (
	Morning Slot = iota
	Noon
	Evening
	Night
)

// ErrInvalidSlot is returned when a slot name cannot be parsed. There is no
// safe default profile, so callers must fail rather than guess.
var ErrInvalidSlot = errors.New("invalid time slot")

var slotNames = [4]string{"morning", "noon", "evening", "night"}

// String returns the canonical lowercase slot name.
func (s Slot) String() string {
	if s < Morning || s > Night {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// Arabic returns the display name used in dose copy.
func (s Slot) Arabic() string {
	switch s {
	case Morning:
		return "الصباح"
	case Noon:
		return "الظهيرة"
	case Evening:
		return "المساء"
	case Night:
		return "الليل"
	}
	return s.String()
}

// ParseSlot parses a slot name. Unknown names fail with ErrInvalidSlot.
func ParseSlot(name string) (Slot, error) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, name)
}

// Slots returns all slots in daily order.
func Slots() []Slot {
	return []Slot{Morning, Noon, Evening, Night}
}

// SlotAt returns the slot covering the given local time:
// morning 05:00–11:59, noon 12:00–16:59, evening 17:00–20:59, night otherwise.
func SlotAt(t time.Time) Slot {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Noon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// Weights holds the five component coefficients for one slot. Each is in
// [0,1]; the engine does not assume they sum to 1.0.
type Weights struct {
	Relevance  float64
	Freshness  float64
	Engagement float64
	Quality    float64
	Timing     float64
}

// weightProfiles is indexed by Slot. A fixed-size array keeps unrecognized
// slots a compile-time impossibility rather than a runtime lookup miss.
var weightProfiles = [4]Weights{
	Morning: {Relevance: 0.25, Freshness: 0.30, Engagement: 0.15, Quality: 0.15, Timing: 0.15},
	Noon:    {Relevance: 0.30, Freshness: 0.25, Engagement: 0.20, Quality: 0.10, Timing: 0.15},
	Evening: {Relevance: 0.20, Freshness: 0.15, Engagement: 0.30, Quality: 0.20, Timing: 0.15},
	Night:   {Relevance: 0.20, Freshness: 0.10, Engagement: 0.20, Quality: 0.20, Timing: 0.30},
}

// Profile returns the weight profile for a slot.
func (s Slot) Profile() Weights {
	return weightProfiles[s]
}
