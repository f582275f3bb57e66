package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/middleware"
	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/internal/service"
	"github.com/noah-isme/contrib-dashboard/internal/web"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

// PageConfig tunes the server-rendered pages.
type PageConfig struct {
	SiteName      string
	APIPrefix     string
	FeedLimit     int
	ReleasesLimit int
	ProjectsLimit int
	PeoplePerPage int
}

// PageParams groups the services rendered by PageHandler.
type PageParams struct {
	Dashboard    dashboardService
	Leaderboard  leaderboardService
	Feed         feedService
	Contributors contributorService
	Logger       *zap.Logger
	Now          func() time.Time
	Location     *time.Location
	Config       PageConfig
}

// PageHandler renders the HTML site.
type PageHandler struct {
	dashboard    dashboardService
	leaderboard  leaderboardService
	feed         feedService
	contributors contributorService
	logger       *zap.Logger
	now          func() time.Time
	loc          *time.Location
	cfg          PageConfig
}

// NewPageHandler constructs the handler.
func NewPageHandler(params PageParams) *PageHandler {
	h := &PageHandler{
		dashboard:    params.Dashboard,
		leaderboard:  params.Leaderboard,
		feed:         params.Feed,
		contributors: params.Contributors,
		logger:       params.Logger,
		now:          params.Now,
		loc:          params.Location,
		cfg:          params.Config,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.cfg.SiteName == "" {
		h.cfg.SiteName = "Contributors"
	}
	if h.cfg.PeoplePerPage <= 0 {
		h.cfg.PeoplePerPage = 24
	}
	return h
}

func (h *PageHandler) page(c *gin.Context, title string) gin.H {
	if title == "" {
		title = h.cfg.SiteName
	} else {
		title = title + " · " + h.cfg.SiteName
	}
	return gin.H{
		"Title": title,
		"Theme": middleware.CurrentTheme(c),
		"Path":  c.Request.URL.Path,
	}
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("page render failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	data := h.page(c, http.StatusText(appErr.Status))
	data["Status"] = appErr.Status
	data["Message"] = appErr.Message
	c.HTML(appErr.Status, "error.html", data)
}

// picker reads the range and panel state of a page, defaulting to the last 7 days.
func (h *PageHandler) picker(c *gin.Context) web.Picker {
	now := h.now().In(h.loc)
	value, err := queryRange(c, h.loc)
	if err != nil || value == nil {
		fallback := daterange.LastDays(now, 7)
		value = &fallback
	}
	surface := daterange.NewDisclosure(c.Query("open") == "1")
	view := daterange.NewPicker(value, nil,
		daterange.WithClock(func() time.Time { return now }),
		daterange.WithLocation(h.loc),
		daterange.WithSurface(surface)).View()
	return web.NewPicker(view, web.ReturnPath(c.Request.URL))
}

// Home renders the landing page.
func (h *PageHandler) Home(c *gin.Context) {
	home, _, err := h.dashboard.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, "")
	data["Home"] = home
	c.HTML(http.StatusOK, "home.html", data)
}

// Leaderboard renders the ranking for the picked range.
func (h *PageHandler) Leaderboard(c *gin.Context) {
	picker := h.picker(c)
	board, err := h.leaderboard.Leaderboard(c.Request.Context(), picker.Value, 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, "Leaderboard")
	data["Picker"] = picker
	data["Leaderboard"] = board
	data["ExportCSV"] = h.exportURL(service.FormatCSV, picker.View)
	data["ExportPDF"] = h.exportURL(service.FormatPDF, picker.View)
	c.HTML(http.StatusOK, "leaderboard.html", data)
}

// Feed renders organisation events inside the picked range.
func (h *PageHandler) Feed(c *gin.Context) {
	picker := h.picker(c)
	window := picker.Value
	events, _, err := h.feed.Events(c.Request.Context(), &window, h.cfg.FeedLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, "Feed")
	data["Picker"] = picker
	data["Events"] = events
	c.HTML(http.StatusOK, "feed.html", data)
}

// Releases renders recent releases.
func (h *PageHandler) Releases(c *gin.Context) {
	releases, _, err := h.feed.Releases(c.Request.Context(), h.cfg.ReleasesLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, "Releases")
	data["Releases"] = releases
	c.HTML(http.StatusOK, "releases.html", data)
}

// Projects renders active projects.
func (h *PageHandler) Projects(c *gin.Context) {
	projects, _, err := h.feed.Projects(c.Request.Context(), h.cfg.ProjectsLimit)
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, "Projects")
	data["Projects"] = projects
	c.HTML(http.StatusOK, "projects.html", data)
}

// People renders the paginated contributor directory.
func (h *PageHandler) People(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		h.fail(c, err)
		return
	}
	search := strings.TrimSpace(c.Query("q"))
	items, pagination, err := h.contributors.List(c.Request.Context(), models.ContributorFilter{
		Search:   search,
		Page:     page,
		PageSize: h.cfg.PeoplePerPage,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	data := h.page(c, "People")
	data["Contributors"] = items
	data["Search"] = search
	data["Pagination"] = pagination
	prev, next := 0, 0
	if pagination != nil {
		if pagination.Page > 1 {
			prev = pagination.Page - 1
		}
		if pagination.Page*pagination.PageSize < pagination.TotalCount {
			next = pagination.Page + 1
		}
	}
	data["PrevPage"] = prev
	data["NextPage"] = next
	c.HTML(http.StatusOK, "people.html", data)
}

// Contributor renders a single profile.
func (h *PageHandler) Contributor(c *gin.Context) {
	detail, err := h.contributors.Detail(c.Request.Context(), c.Param("github"))
	if err != nil {
		h.fail(c, err)
		return
	}
	data := h.page(c, detail.Name)
	data["Contributor"] = detail
	c.HTML(http.StatusOK, "contributor.html", data)
}

// Theme stores the colour scheme cookie and sends the visitor back.
func (h *PageHandler) Theme(c *gin.Context) {
	mode := c.Param("mode")
	if !middleware.ValidTheme(mode) {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "theme must be light or dark"))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.ThemeCookie, mode, int((365 * 24 * time.Hour).Seconds()), "/", "", false, false)
	c.Redirect(http.StatusSeeOther, safeReturn(c.Query("return")).String())
}

func (h *PageHandler) exportURL(format string, view daterange.View) string {
	q := url.Values{}
	q.Set("format", format)
	q.Set("start", view.StartInput)
	q.Set("end", view.EndInput)
	return strings.TrimRight(h.cfg.APIPrefix, "/") + "/leaderboard/export?" + q.Encode()
}
