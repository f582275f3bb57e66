// Package web holds the server-rendered pages and the picker view model they share.
package web

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
)

//go:embed templates/*.html
var templateFS embed.FS

// Funcs is the helper set available to every page template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":   daterange.FormatDate,
		"triggerLabel": daterange.TriggerLabel,
		"inputValue":   daterange.InputValue,
		"initial": func(s string) string {
			s = strings.TrimSpace(s)
			if s == "" {
				return "?"
			}
			r, _ := utf8.DecodeRuneInString(s)
			return string(unicode.ToUpper(r))
		},
		"ago": func(t time.Time) string {
			return t.Format("Jan 02, 15:04")
		},
	}
}

// Templates parses the embedded page set.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Picker is the picker partial's model: the rendered view plus the links that drive it.
type Picker struct {
	daterange.View
	Return     string
	ToggleURL  string
	DismissURL string
	PresetURLs []string
}

// NewPicker derives the event links for view, returning visitors to returnPath.
func NewPicker(view daterange.View, returnPath string) Picker {
	p := Picker{
		View:       view,
		Return:     returnPath,
		ToggleURL:  EventURL("toggle", view, returnPath, nil),
		DismissURL: EventURL("dismiss", view, returnPath, nil),
		PresetURLs: make([]string, len(view.Presets)),
	}
	for i, preset := range view.Presets {
		p.PresetURLs[i] = EventURL("preset", view, returnPath, url.Values{"index": {strconv.Itoa(preset.Index)}})
	}
	return p
}

// EventURL builds a /range/<action> link carrying the current range.
func EventURL(action string, view daterange.View, returnPath string, extra url.Values) string {
	q := url.Values{}
	q.Set("start", view.StartInput)
	q.Set("end", view.EndInput)
	q.Set("return", returnPath)
	if view.Open {
		q.Set("open", "1")
	}
	for key, values := range extra {
		q[key] = values
	}
	return "/range/" + action + "?" + q.Encode()
}

// PageURL rebuilds a page link for r with the panel open or closed. The target's own
// query parameters are kept.
func PageURL(target *url.URL, r daterange.DateRange, open bool) string {
	q := target.Query()
	q.Set("start", daterange.InputValue(r.Start))
	q.Set("end", daterange.InputValue(r.End))
	if open {
		q.Set("open", "1")
	} else {
		q.Del("open")
	}
	return target.Path + "?" + q.Encode()
}

// ReturnPath is the link picker events send the browser back to: the page's path and
// query without the range state, which travels separately.
func ReturnPath(u *url.URL) string {
	q := u.Query()
	q.Del("start")
	q.Del("end")
	q.Del("open")
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}
