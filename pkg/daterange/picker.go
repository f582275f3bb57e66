package daterange

import "time"

// ChangeFunc receives every range committed through the picker.
type ChangeFunc func(DateRange)

// Option customises a Picker.
type Option func(*Picker)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(p *Picker) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the calendar location raw inputs are parsed in. Defaults to the
// location of the clock's "now".
func WithLocation(loc *time.Location) Option {
	return func(p *Picker) {
		p.loc = loc
	}
}

// WithSurface injects the panel the picker opens and closes.
func WithSurface(surface Surface) Option {
	return func(p *Picker) {
		if surface != nil {
			p.surface = surface
		}
	}
}

// Picker maps user events onto new ranges for a controlled value. It never keeps the
// range it emits: the caller owns the value and builds a new Picker to reflect changes.
type Picker struct {
	value    *DateRange
	onChange ChangeFunc
	surface  Surface
	now      func() time.Time
	loc      *time.Location
}

// NewPicker returns a picker reflecting value. A nil value, or a zero bound, reads as now.
func NewPicker(value *DateRange, onChange ChangeFunc, opts ...Option) *Picker {
	if onChange == nil {
		onChange = func(DateRange) {}
	}
	p := &Picker{
		value:    value,
		onChange: onChange,
		surface:  &Disclosure{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Value returns the effective range.
func (p *Picker) Value() DateRange {
	return p.effective(p.now())
}

// IsOpen reports whether the panel is visible.
func (p *Picker) IsOpen() bool {
	return p.surface.IsOpen()
}

// Toggle opens or closes the panel without touching the range.
func (p *Picker) Toggle() {
	p.surface.Toggle()
}

// Dismiss closes the panel on outside interaction.
func (p *Picker) Dismiss() {
	p.surface.Close()
}

// EditStart commits a new start bound from a raw input, keeping the current end.
// Malformed input is replaced by now. The panel stays as it is.
func (p *Picker) EditStart(raw string) DateRange {
	now := p.now()
	current := p.effective(now)
	next := DateRange{Start: p.parseOr(raw, now), End: current.End}
	p.onChange(next)
	return next
}

// EditEnd commits a new end bound from a raw input, keeping the current start.
func (p *Picker) EditEnd(raw string) DateRange {
	now := p.now()
	current := p.effective(now)
	next := DateRange{Start: current.Start, End: p.parseOr(raw, now)}
	p.onChange(next)
	return next
}

// SelectPreset commits the preset at index and closes the panel. It reports false,
// without emitting, when index is out of range.
func (p *Picker) SelectPreset(index int) (DateRange, bool) {
	presets := Presets(p.now())
	if index < 0 || index >= len(presets) {
		return DateRange{}, false
	}
	return p.commitPreset(presets[index]), true
}

// SelectPresetLabel is SelectPreset keyed by the preset label.
func (p *Picker) SelectPresetLabel(label string) (DateRange, bool) {
	for _, preset := range Presets(p.now()) {
		if preset.Label == label {
			return p.commitPreset(preset), true
		}
	}
	return DateRange{}, false
}

// View is everything needed to render the picker once.
type View struct {
	Label      string       `json:"label"`
	Open       bool         `json:"open"`
	Value      DateRange    `json:"value"`
	StartInput string       `json:"startInput"`
	EndInput   string       `json:"endInput"`
	Presets    []PresetView `json:"presets"`
}

// PresetView is a preset button.
type PresetView struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	Value DateRange `json:"value"`
}

// View renders the picker against a single reading of the clock.
func (p *Picker) View() View {
	now := p.now()
	current := p.effective(now)
	presets := Presets(now)
	buttons := make([]PresetView, 0, len(presets))
	for i, preset := range presets {
		buttons = append(buttons, PresetView{Index: i, Label: preset.Label, Value: preset.Value})
	}
	return View{
		Label:      TriggerLabel(current),
		Open:       p.surface.IsOpen(),
		Value:      current,
		StartInput: InputValue(current.Start),
		EndInput:   InputValue(current.End),
		Presets:    buttons,
	}
}

func (p *Picker) commitPreset(preset Preset) DateRange {
	p.onChange(preset.Value)
	p.surface.Close()
	return preset.Value
}

func (p *Picker) effective(now time.Time) DateRange {
	current := DateRange{Start: now, End: now}
	if p.value == nil {
		return current
	}
	if !p.value.Start.IsZero() {
		current.Start = p.value.Start
	}
	if !p.value.End.IsZero() {
		current.End = p.value.End
	}
	return current
}

func (p *Picker) parseOr(raw string, now time.Time) time.Time {
	loc := p.loc
	if loc == nil {
		loc = now.Location()
	}
	if parsed, ok := ParseInput(raw, loc); ok {
		return parsed
	}
	return now
}
