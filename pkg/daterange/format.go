package daterange

import (
	"strings"
	"time"
)

const (
	// DisplayLayout renders dates on the trigger and in exports, e.g. "Jan 05, 2024".
	DisplayLayout = "Jan 02, 2006"
	// InputLayout is the ISO calendar date accepted by the raw date inputs.
	InputLayout = "2006-01-02"

	monthLabelLayout = "Jan, 2006"
	labelSeparator   = " → "
)

// FormatDate renders t for display. Time of day is dropped.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// TriggerLabel renders the range as shown on the picker trigger.
func TriggerLabel(r DateRange) string {
	return FormatDate(r.Start) + labelSeparator + FormatDate(r.End)
}

// InputValue renders t as the value of a raw date input.
func InputValue(t time.Time) string {
	return t.Format(InputLayout)
}

// ParseInput parses a raw date input in loc. The boolean is false for empty or
// malformed input.
func ParseInput(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(InputLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
