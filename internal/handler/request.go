package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

// queryRange reads the start and end query bounds. It returns nil when neither is set;
// a missing bound is left zero so the picker fills it with the current date.
func queryRange(c *gin.Context, loc *time.Location) (*daterange.DateRange, error) {
	rawStart := strings.TrimSpace(c.Query("start"))
	rawEnd := strings.TrimSpace(c.Query("end"))
	if rawStart == "" && rawEnd == "" {
		return nil, nil
	}

	var r daterange.DateRange
	if rawStart != "" {
		start, ok := daterange.ParseInput(rawStart, loc)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date, expected YYYY-MM-DD")
		}
		r.Start = start
	}
	if rawEnd != "" {
		end, ok := daterange.ParseInput(rawEnd, loc)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date, expected YYYY-MM-DD")
		}
		r.End = end
	}
	return &r, nil
}

// resolveRange applies picker defaults to the query range, using fallback when none was given.
func resolveRange(value *daterange.DateRange, now time.Time, fallback daterange.DateRange) daterange.DateRange {
	if value == nil {
		return fallback
	}
	return daterange.NewPicker(value, nil, daterange.WithClock(func() time.Time { return now })).Value()
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a non-negative integer")
	}
	return value, nil
}

// safeReturn keeps redirects on this site. Anything that is not a local absolute path becomes "/".
func safeReturn(raw string) *url.URL {
	fallback := &url.URL{Path: "/"}
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return &url.URL{Path: u.Path, RawQuery: u.RawQuery}
}
