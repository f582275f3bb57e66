package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func assertSameDay(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.Equal(t, want.Format(InputLayout), got.Format(InputLayout))
}

func TestPresetsOrderAndBounds(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	presets := Presets(now)

	require.Len(t, presets, 8)
	labels := make([]string, 0, len(presets))
	for _, p := range presets {
		labels = append(labels, p.Label)
		assert.True(t, p.Value.Ordered(), "preset %q must be ordered", p.Label)
	}
	assert.Equal(t, []string{
		"Yesterday",
		"Last 7 days",
		"Last 28 days",
		"Last 365 days",
		"Mar, 2024",
		"Feb, 2024",
		"Prev. Year (2023)",
		"Curr. Year (2024)",
	}, labels)

	yesterday := presets[0].Value
	assert.True(t, yesterday.Start.Equal(yesterday.End))
	assertSameDay(t, day(2024, time.March, 14), yesterday.Start)

	last7 := presets[1].Value
	assertSameDay(t, day(2024, time.March, 8), last7.Start)
	assertSameDay(t, day(2024, time.March, 15), last7.End)

	assertSameDay(t, day(2024, time.February, 16), presets[2].Value.Start)
	assertSameDay(t, day(2023, time.March, 16), presets[3].Value.Start)

	month := presets[4].Value
	assertSameDay(t, day(2024, time.March, 1), month.Start)
	assertSameDay(t, day(2024, time.March, 31), month.End)

	prevMonth := presets[5].Value
	assertSameDay(t, day(2024, time.February, 1), prevMonth.Start)
	assertSameDay(t, day(2024, time.February, 29), prevMonth.End)

	prevYear := presets[6].Value
	assertSameDay(t, day(2023, time.January, 1), prevYear.Start)
	assertSameDay(t, day(2023, time.December, 31), prevYear.End)

	currYear := presets[7].Value
	assertSameDay(t, day(2024, time.January, 1), currYear.Start)
	assertSameDay(t, day(2024, time.December, 31), currYear.End)
}

func TestPresetsPreviousMonthRollsOverYear(t *testing.T) {
	now := time.Date(2025, time.January, 31, 8, 0, 0, 0, time.UTC)
	presets := Presets(now)

	assert.Equal(t, "Jan, 2025", presets[4].Label)
	assert.Equal(t, "Dec, 2024", presets[5].Label)
	assertSameDay(t, day(2024, time.December, 1), presets[5].Value.Start)
	assertSameDay(t, day(2024, time.December, 31), presets[5].Value.End)
	assert.Equal(t, "Prev. Year (2024)", presets[6].Label)
}

func TestPresetsKeepLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2024, time.July, 1, 0, 30, 0, 0, loc)

	for _, p := range Presets(now) {
		assert.Equal(t, loc, p.Value.Start.Location(), p.Label)
		assert.Equal(t, loc, p.Value.End.Location(), p.Label)
	}
	assertSameDay(t, day(2024, time.June, 1), Presets(now)[5].Value.Start)
}

func TestPresetsAreRecomputedFromNow(t *testing.T) {
	first := Presets(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	second := Presets(time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, first[0].Value, second[0].Value)
}

func TestDateRangeNormalizeAndContains(t *testing.T) {
	inverted := DateRange{Start: day(2024, time.March, 10), End: day(2024, time.March, 1)}
	assert.False(t, inverted.Ordered())

	normalized := inverted.Normalize()
	assert.True(t, normalized.Ordered())
	assert.Equal(t, inverted.End, normalized.Start)

	r := DateRange{Start: day(2024, time.March, 1), End: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)}
	assert.True(t, r.Contains(time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(day(2024, time.March, 1)))
	assert.False(t, r.Contains(day(2024, time.March, 11)))
	assert.False(t, r.Contains(time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)))

	from, to := r.Bounds()
	assert.Equal(t, day(2024, time.March, 1), from)
	assert.Equal(t, day(2024, time.March, 11), to)
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, time.January, 5, 18, 45, 0, 0, time.UTC)
	formatted := FormatDate(date)
	assert.Equal(t, "Jan 05, 2024", formatted)

	parsed, err := time.Parse(DisplayLayout, formatted)
	require.NoError(t, err)
	assertSameDay(t, date, parsed)

	label := TriggerLabel(DateRange{Start: date, End: day(2024, time.January, 12)})
	assert.Equal(t, "Jan 05, 2024 → Jan 12, 2024", label)
	assert.Equal(t, "2024-01-05", InputValue(date))
}

func TestParseInput(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	parsed, ok := ParseInput(" 2024-02-29 ", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, loc), parsed)

	for _, raw := range []string{"", "   ", "2024-02-30", "29/02/2024", "yesterday"} {
		_, ok := ParseInput(raw, loc)
		assert.False(t, ok, raw)
	}
}
