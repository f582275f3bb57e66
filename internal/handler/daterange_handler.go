package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/internal/web"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/response"
)

type rangeRecorder interface {
	RecordRangeChange(source string)
}

// DateRangeHandler serves the picker: preset listing, JSON events and the page redirects.
type DateRangeHandler struct {
	metrics  rangeRecorder
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

// NewDateRangeHandler constructs the handler. loc is the calendar used for presets and inputs.
func NewDateRangeHandler(metrics rangeRecorder, validate *validator.Validate, now func() time.Time, loc *time.Location) *DateRangeHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DateRangeHandler{metrics: metrics, validate: validate, now: now, loc: loc}
}

func (h *DateRangeHandler) clock() time.Time {
	return h.now().In(h.loc)
}

func (h *DateRangeHandler) record(source string) {
	if h.metrics != nil {
		h.metrics.RecordRangeChange(source)
	}
}

// Presets godoc
// @Summary List date range presets
// @Tags Ranges
// @Produce json
// @Param now query string false "Reference date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /ranges/presets [get]
func (h *DateRangeHandler) Presets(c *gin.Context) {
	now := h.clock()
	if raw := strings.TrimSpace(c.Query("now")); raw != "" {
		parsed, ok := daterange.ParseInput(raw, h.loc)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid now, expected YYYY-MM-DD"))
			return
		}
		now = parsed
	}

	presets := daterange.Presets(now)
	items := make([]dto.PresetResponse, 0, len(presets))
	for i, preset := range presets {
		items = append(items, dto.PresetResponse{
			Index: i,
			Label: preset.Label,
			Value: preset.Value,
			Start: daterange.FormatDate(preset.Value.Start),
			End:   daterange.FormatDate(preset.Value.End),
		})
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Event godoc
// @Summary Apply a picker interaction
// @Description Applies one toggle, dismiss, start, end or preset event to the given range and panel state
// @Tags Ranges
// @Accept json
// @Produce json
// @Param payload body dto.RangeEventRequest true "Picker state and event"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ranges/events [post]
func (h *DateRangeHandler) Event(c *gin.Context) {
	var req dto.RangeEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range event payload"))
		return
	}
	if err := h.validate.Struct(req.Event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range event"))
		return
	}

	now := h.clock()
	clock := func() time.Time { return now }
	surface := daterange.NewDisclosure(req.Open)
	var next *daterange.DateRange
	onChange := func(v daterange.DateRange) { next = &v }
	picker := daterange.NewPicker(req.Value, onChange,
		daterange.WithClock(clock), daterange.WithLocation(h.loc), daterange.WithSurface(surface))

	source := ""
	switch req.Event.Type {
	case dto.RangeEventToggle:
		picker.Toggle()
	case dto.RangeEventDismiss:
		picker.Dismiss()
	case dto.RangeEventStart:
		picker.EditStart(req.Event.Value)
		source = service.RangeSourceStart
	case dto.RangeEventEnd:
		picker.EditEnd(req.Event.Value)
		source = service.RangeSourceEnd
	case dto.RangeEventPreset:
		if req.Event.Index != nil {
			picker.SelectPreset(*req.Event.Index)
		} else {
			picker.SelectPresetLabel(req.Event.Label)
		}
		source = service.RangeSourcePreset
	}

	value := req.Value
	if next != nil {
		value = next
		h.record(source)
	}
	view := daterange.NewPicker(value, nil, daterange.WithClock(clock), daterange.WithLocation(h.loc), daterange.WithSurface(surface)).View()
	response.JSON(c, http.StatusOK, dto.RangeEventResponse{
		Value:   view.Value,
		Open:    view.Open,
		Label:   view.Label,
		Changed: next != nil,
		View:    view,
	}, nil)
}

// Toggle flips the panel of the page named by return.
func (h *DateRangeHandler) Toggle(c *gin.Context) {
	value, open := h.pageState(c)
	h.redirect(c, value, !open)
}

// Dismiss closes the panel without changing the range.
func (h *DateRangeHandler) Dismiss(c *gin.Context) {
	value, _ := h.pageState(c)
	h.redirect(c, value, false)
}

// Edit applies a typed start or end date. The panel stays open.
func (h *DateRangeHandler) Edit(c *gin.Context) {
	value, open := h.pageState(c)
	picker := daterange.NewPicker(&value, nil, daterange.WithClock(h.clock), daterange.WithLocation(h.loc))

	switch c.Query("bound") {
	case "start":
		value = picker.EditStart(c.Query("value"))
		h.record(service.RangeSourceStart)
	case "end":
		value = picker.EditEnd(c.Query("value"))
		h.record(service.RangeSourceEnd)
	default:
		h.redirect(c, value, open)
		return
	}
	h.redirect(c, value, true)
}

// Preset applies a preset by index and closes the panel. Unknown presets change nothing.
func (h *DateRangeHandler) Preset(c *gin.Context) {
	value, open := h.pageState(c)
	surface := daterange.NewDisclosure(open)
	picker := daterange.NewPicker(&value, nil, daterange.WithClock(h.clock), daterange.WithLocation(h.loc), daterange.WithSurface(surface))

	index, err := strconv.Atoi(c.Query("index"))
	if err == nil {
		if next, ok := picker.SelectPreset(index); ok {
			value = next
			h.record(service.RangeSourcePreset)
		}
	}
	h.redirect(c, value, surface.IsOpen())
}

// pageState reads the range and panel state carried by a picker link.
func (h *DateRangeHandler) pageState(c *gin.Context) (daterange.DateRange, bool) {
	value, err := queryRange(c, h.loc)
	if err != nil {
		value = nil
	}
	picker := daterange.NewPicker(value, nil, daterange.WithClock(h.clock), daterange.WithLocation(h.loc))
	return picker.Value(), c.Query("open") == "1"
}

func (h *DateRangeHandler) redirect(c *gin.Context, value daterange.DateRange, open bool) {
	target := safeReturn(c.Query("return"))
	c.Redirect(http.StatusSeeOther, web.PageURL(target, value, open))
}
