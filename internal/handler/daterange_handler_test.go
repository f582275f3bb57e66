package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contrib-dashboard/internal/dto"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

func newRangeRouter(rec *fakeRangeRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDateRangeHandler(rec, nil, fixedNow, time.UTC)
	r := gin.New()
	r.GET("/ranges/presets", h.Presets)
	r.POST("/ranges/events", h.Event)
	r.GET("/range/toggle", h.Toggle)
	r.GET("/range/dismiss", h.Dismiss)
	r.GET("/range/edit", h.Edit)
	r.GET("/range/preset", h.Preset)
	return r
}

func postEvent(t *testing.T, r http.Handler, body interface{}) (*httptest.ResponseRecorder, dto.RangeEventResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/ranges/events", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)

	var out struct {
		Data dto.RangeEventResponse `json:"data"`
	}
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out.Data
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestDateRangeHandlerPresets(t *testing.T) {
	r := newRangeRouter(&fakeRangeRecorder{})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ranges/presets?now=2025-01-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data []dto.PresetResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 8)
	assert.Equal(t, "Yesterday", out.Data[0].Label)
	assert.Equal(t, "Jan 30, 2025", out.Data[0].Start)
	assert.Equal(t, "Dec, 2024", out.Data[5].Label)
	assert.Equal(t, "Dec 01, 2024", out.Data[5].Start)
	assert.Equal(t, "Dec 31, 2024", out.Data[5].End)
	assert.Equal(t, 7, out.Data[7].Index)

	bad := serve(r, httptest.NewRequest(http.MethodGet, "/ranges/presets?now=31-01-2025", nil))
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestDateRangeHandlerToggleAndDismissKeepValue(t *testing.T) {
	metrics := &fakeRangeRecorder{}
	r := newRangeRouter(metrics)
	value := daterange.DateRange{Start: utcDay(2024, time.March, 1), End: utcDay(2024, time.March, 10)}

	rec, out := postEvent(t, r, dto.RangeEventRequest{Value: &value, Open: false, Event: dto.RangeEvent{Type: dto.RangeEventToggle}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, out.Open)
	assert.False(t, out.Changed)
	assert.True(t, value.Start.Equal(out.Value.Start))
	assert.Equal(t, "Mar 01, 2024 → Mar 10, 2024", out.Label)

	_, out = postEvent(t, r, dto.RangeEventRequest{Value: &value, Open: true, Event: dto.RangeEvent{Type: dto.RangeEventDismiss}})
	assert.False(t, out.Open)
	assert.False(t, out.Changed)
	assert.Empty(t, metrics.sources)
}

func TestDateRangeHandlerEditBounds(t *testing.T) {
	metrics := &fakeRangeRecorder{}
	r := newRangeRouter(metrics)
	value := daterange.DateRange{Start: utcDay(2024, time.March, 1), End: utcDay(2024, time.March, 10)}

	_, out := postEvent(t, r, dto.RangeEventRequest{Value: &value, Open: true, Event: dto.RangeEvent{Type: dto.RangeEventStart, Value: "2024-02-20"}})
	assert.True(t, out.Changed)
	assert.True(t, out.Open)
	assert.True(t, utcDay(2024, time.February, 20).Equal(out.Value.Start))
	assert.True(t, value.End.Equal(out.Value.End))
	assert.Equal(t, "2024-02-20", out.View.StartInput)

	_, out = postEvent(t, r, dto.RangeEventRequest{Value: &value, Open: true, Event: dto.RangeEvent{Type: dto.RangeEventEnd, Value: "not a date"}})
	assert.True(t, out.Changed)
	assert.True(t, testNow.Equal(out.Value.End))
	assert.True(t, value.Start.Equal(out.Value.Start))

	assert.Equal(t, []string{service.RangeSourceStart, service.RangeSourceEnd}, metrics.sources)
}

func TestDateRangeHandlerPresetClosesPanel(t *testing.T) {
	metrics := &fakeRangeRecorder{}
	r := newRangeRouter(metrics)
	index := 1

	_, out := postEvent(t, r, dto.RangeEventRequest{Open: true, Event: dto.RangeEvent{Type: dto.RangeEventPreset, Index: &index}})
	assert.True(t, out.Changed)
	assert.False(t, out.Open)
	assert.Equal(t, "2024-03-08", daterange.InputValue(out.Value.Start))
	assert.Equal(t, "2024-03-15", daterange.InputValue(out.Value.End))

	_, out = postEvent(t, r, dto.RangeEventRequest{Open: true, Event: dto.RangeEvent{Type: dto.RangeEventPreset, Label: "Prev. Year (2023)"}})
	assert.True(t, out.Changed)
	assert.Equal(t, "2023-01-01", daterange.InputValue(out.Value.Start))

	assert.Equal(t, []string{service.RangeSourcePreset, service.RangeSourcePreset}, metrics.sources)
}

func TestDateRangeHandlerUnknownPresetIsIgnored(t *testing.T) {
	metrics := &fakeRangeRecorder{}
	r := newRangeRouter(metrics)
	index := 8

	rec, out := postEvent(t, r, dto.RangeEventRequest{Open: true, Event: dto.RangeEvent{Type: dto.RangeEventPreset, Index: &index}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, out.Changed)
	assert.True(t, out.Open)
	assert.True(t, testNow.Equal(out.Value.Start))
	assert.Empty(t, metrics.sources)
}

func TestDateRangeHandlerRejectsInvalidEvents(t *testing.T) {
	r := newRangeRouter(&fakeRangeRecorder{})
	negative := -1

	for name, body := range map[string]interface{}{
		"unknown type":   dto.RangeEventRequest{Event: dto.RangeEvent{Type: "zoom"}},
		"missing type":   dto.RangeEventRequest{},
		"negative index": dto.RangeEventRequest{Event: dto.RangeEvent{Type: dto.RangeEventPreset, Index: &negative}},
	} {
		rec, _ := postEvent(t, r, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	req := httptest.NewRequest(http.MethodPost, "/ranges/events", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

func redirectTarget(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u
}

func TestDateRangeRedirects(t *testing.T) {
	metrics := &fakeRangeRecorder{}
	r := newRangeRouter(metrics)
	base := "start=2024-03-01&end=2024-03-10&return=%2Fleaderboard"

	toggled := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/toggle?"+base, nil)))
	assert.Equal(t, "/leaderboard", toggled.Path)
	assert.Equal(t, "1", toggled.Query().Get("open"))
	assert.Equal(t, "2024-03-01", toggled.Query().Get("start"))

	closed := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/toggle?open=1&"+base, nil)))
	assert.Empty(t, closed.Query().Get("open"))

	edited := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/edit?bound=start&value=2024-02-01&"+base, nil)))
	assert.Equal(t, "2024-02-01", edited.Query().Get("start"))
	assert.Equal(t, "2024-03-10", edited.Query().Get("end"))
	assert.Equal(t, "1", edited.Query().Get("open"))

	preset := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/preset?index=0&open=1&"+base, nil)))
	assert.Equal(t, "2024-03-14", preset.Query().Get("start"))
	assert.Equal(t, "2024-03-14", preset.Query().Get("end"))
	assert.Empty(t, preset.Query().Get("open"))

	unknown := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/preset?index=42&open=1&"+base, nil)))
	assert.Equal(t, "2024-03-01", unknown.Query().Get("start"))
	assert.Equal(t, "1", unknown.Query().Get("open"))

	dismissed := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/dismiss?open=1&"+base, nil)))
	assert.Empty(t, dismissed.Query().Get("open"))
	assert.Equal(t, "2024-03-10", dismissed.Query().Get("end"))

	assert.Equal(t, []string{service.RangeSourceStart, service.RangeSourcePreset}, metrics.sources)
}

func TestDateRangeRedirectKeepsPageQuery(t *testing.T) {
	r := newRangeRouter(&fakeRangeRecorder{})
	ret := url.QueryEscape("/people?q=octo&page=2")

	target := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/preset?index=1&open=1&start=2024-03-01&end=2024-03-10&return="+ret, nil)))
	assert.Equal(t, "/people", target.Path)
	assert.Equal(t, "octo", target.Query().Get("q"))
	assert.Equal(t, "2", target.Query().Get("page"))
	assert.Equal(t, "2024-03-08", target.Query().Get("start"))
	assert.Empty(t, target.Query().Get("open"))
}

func TestDateRangeRedirectsStayLocal(t *testing.T) {
	r := newRangeRouter(&fakeRangeRecorder{})
	for _, ret := range []string{"https://evil.example", "//evil.example/feed", "feed", `/\evil.example`} {
		target := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/dismiss?start=2024-03-01&end=2024-03-10&return="+url.QueryEscape(ret), nil)))
		assert.Equal(t, "/", target.Path, ret)
		assert.Empty(t, target.Host, ret)
	}
}

func TestDateRangeRedirectWithoutRangeUsesNow(t *testing.T) {
	r := newRangeRouter(&fakeRangeRecorder{})
	target := redirectTarget(t, serve(r, httptest.NewRequest(http.MethodGet, "/range/toggle?return=%2Ffeed", nil)))
	assert.Equal(t, "/feed", target.Path)
	assert.Equal(t, "2024-03-15", target.Query().Get("start"))
	assert.Equal(t, "2024-03-15", target.Query().Get("end"))
}
