package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// DateLayout is the wire format of a booking date
const DateLayout = "2006-01-02"

// TimeSlot is a wall-clock window in 24-hour HH:MM
type TimeSlot struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// ParseTimeSlot parses "HH:MM-HH:MM"
func ParseTimeSlot(s string) (TimeSlot, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return TimeSlot{}, fmt.Errorf("time slot must be HH:MM-HH:MM")
	}
	slot := TimeSlot{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if err := slot.Validate(); err != nil {
		return TimeSlot{}, err
	}
	return slot, nil
}

// Validate checks both bounds are HH:MM and start < end.
// Zero-padded HH:MM compares correctly as a string.
func (t TimeSlot) Validate() error {
	if !clockPattern.MatchString(t.Start) || !clockPattern.MatchString(t.End) {
		return fmt.Errorf("time slot bounds must be HH:MM")
	}
	if t.Start >= t.End {
		return fmt.Errorf("time slot start must be before end")
	}
	return nil
}

// Overlaps reports whether t and o share any minute
func (t TimeSlot) Overlaps(o TimeSlot) bool {
	return t.Start < o.End && o.Start < t.End
}

func (t TimeSlot) String() string {
	return t.Start + "-" + t.End
}

// ParseBookingDate parses a YYYY-MM-DD calendar date as UTC midnight
func ParseBookingDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("booking date must be YYYY-MM-DD")
	}
	return d, nil
}
