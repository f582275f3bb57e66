// Package daterange implements the date-range picker used by the dashboard pages:
// relative presets, the controlled range controller and its disclosure panel.
package daterange

import (
	"fmt"
	"time"
)

// DateRange is an inclusive pair of calendar dates. Time of day is carried but not
// meaningful. Start <= End is not enforced.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Ordered reports whether Start does not fall after End.
func (r DateRange) Ordered() bool {
	return !r.Start.After(r.End)
}

// Normalize returns the range with its bounds swapped when inverted.
func (r DateRange) Normalize() DateRange {
	if r.Ordered() {
		return r
	}
	return DateRange{Start: r.End, End: r.Start}
}

// Contains reports whether t falls on a calendar day between Start and End, both inclusive.
func (r DateRange) Contains(t time.Time) bool {
	loc := r.Start.Location()
	day := StartOfDay(t.In(loc))
	return !day.Before(StartOfDay(r.Start)) && !day.After(StartOfDay(r.End.In(loc)))
}

// Bounds returns the half-open [from, to) instant window covering every calendar day of
// the range, suitable for SQL filtering.
func (r DateRange) Bounds() (time.Time, time.Time) {
	from := StartOfDay(r.Start)
	to := StartOfDay(r.End.In(r.Start.Location())).AddDate(0, 0, 1)
	return from, to
}

// Preset is a named range computed relative to "now".
type Preset struct {
	Label string    `json:"label"`
	Value DateRange `json:"value"`
}

// Presets returns the relative ranges offered by the picker, in display order. The
// result is a pure function of now and is evaluated in now's location.
func Presets(now time.Time) []Preset {
	loc := now.Location()
	prevYear := now.Year() - 1
	prevMonth := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, loc)

	return []Preset{
		{
			Label: "Yesterday",
			Value: DateRange{Start: now.AddDate(0, 0, -1), End: now.AddDate(0, 0, -1)},
		},
		{
			Label: "Last 7 days",
			Value: LastDays(now, 7),
		},
		{
			Label: "Last 28 days",
			Value: LastDays(now, 28),
		},
		{
			Label: "Last 365 days",
			Value: LastDays(now, 365),
		},
		{
			Label: now.Format(monthLabelLayout),
			Value: DateRange{Start: StartOfMonth(now), End: EndOfMonth(now)},
		},
		{
			Label: prevMonth.Format(monthLabelLayout),
			Value: DateRange{Start: StartOfMonth(prevMonth), End: EndOfMonth(prevMonth)},
		},
		{
			Label: fmt.Sprintf("Prev. Year (%d)", prevYear),
			Value: DateRange{Start: StartOfYear(prevYear, loc), End: EndOfYear(prevYear, loc)},
		},
		{
			Label: fmt.Sprintf("Curr. Year (%d)", now.Year()),
			Value: DateRange{Start: StartOfYear(now.Year(), loc), End: EndOfYear(now.Year(), loc)},
		},
	}
}

// LastDays spans from n days before now up to now.
func LastDays(now time.Time, n int) DateRange {
	return DateRange{Start: now.AddDate(0, 0, -n), End: now}
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last instant of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfYear returns midnight of January 1st.
func StartOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

// EndOfYear returns the last instant of December 31st.
func EndOfYear(year int, loc *time.Location) time.Time {
	return StartOfYear(year+1, loc).Add(-time.Nanosecond)
}
