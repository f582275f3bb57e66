package daterange

// State is the visibility of the picker panel.
type State int

const (
	// Closed hides the raw inputs and presets. It is the initial state.
	Closed State = iota
	// Open shows the raw inputs and presets.
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Surface is the open/close capability the picker drives.
type Surface interface {
	Toggle()
	Close()
	IsOpen() bool
}

// Disclosure is a two-state panel machine. The zero value is Closed.
type Disclosure struct {
	state State
}

// NewDisclosure returns a disclosure restored to the given visibility.
func NewDisclosure(open bool) *Disclosure {
	d := &Disclosure{}
	if open {
		d.state = Open
	}
	return d
}

// State returns the current state.
func (d *Disclosure) State() State {
	return d.state
}

// IsOpen reports whether the panel is visible.
func (d *Disclosure) IsOpen() bool {
	return d.state == Open
}

// Open shows the panel.
func (d *Disclosure) Open() {
	d.state = Open
}

// Close hides the panel.
func (d *Disclosure) Close() {
	d.state = Closed
}

// Toggle flips the panel, as the trigger does.
func (d *Disclosure) Toggle() {
	if d.state == Open {
		d.state = Closed
		return
	}
	d.state = Open
}

// Dismiss closes the panel on outside interaction (click outside, escape).
func (d *Disclosure) Dismiss() {
	d.Close()
}
