package dto

import "github.com/noah-isme/contrib-dashboard/pkg/daterange"

// Range event types accepted by the picker endpoint.
const (
	RangeEventToggle  = "toggle"
	RangeEventDismiss = "dismiss"
	RangeEventStart   = "start"
	RangeEventEnd     = "end"
	RangeEventPreset  = "preset"
)

// RangeEvent is one user interaction with the picker.
type RangeEvent struct {
	Type  string `json:"type" validate:"required,oneof=toggle dismiss start end preset"`
	Value string `json:"value,omitempty"`
	Index *int   `json:"index,omitempty" validate:"omitempty,min=0"`
	Label string `json:"label,omitempty"`
}

// RangeEventRequest carries the controlled value, the panel state and the event.
type RangeEventRequest struct {
	Value *daterange.DateRange `json:"value,omitempty"`
	Open  bool                 `json:"open"`
	Event RangeEvent           `json:"event"`
}

// RangeEventResponse is the picker state after applying an event.
type RangeEventResponse struct {
	Value   daterange.DateRange `json:"value"`
	Open    bool                `json:"open"`
	Label   string              `json:"label"`
	Changed bool                `json:"changed"`
	View    daterange.View      `json:"view"`
}

// PresetResponse is a preset with its formatted bounds.
type PresetResponse struct {
	Index int                 `json:"index"`
	Label string              `json:"label"`
	Value daterange.DateRange `json:"value"`
	Start string              `json:"start"`
	End   string              `json:"end"`
}
