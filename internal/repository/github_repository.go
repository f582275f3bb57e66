package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

const (
	githubAcceptHeader = "application/vnd.github+json"
	githubAPIVersion   = "2022-11-28"
	maxPerPage         = 100
	errorBodyLimit     = 512
)

// UpstreamObserver records the duration of every GitHub call.
type UpstreamObserver interface {
	ObserveUpstream(endpoint string, status int, duration time.Duration)
}

// GitHubConfig configures the GitHub REST client.
type GitHubConfig struct {
	BaseURL string
	Org     string
	Token   string
	Timeout time.Duration
}

// GitHubRepository reads organisation activity from the GitHub REST API.
type GitHubRepository struct {
	client   *http.Client
	cfg      GitHubConfig
	observer UpstreamObserver
	logger   *zap.Logger
}

// NewGitHubRepository builds a client. A nil httpClient uses a client with cfg.Timeout.
func NewGitHubRepository(httpClient *http.Client, cfg GitHubConfig, observer UpstreamObserver, logger *zap.Logger) *GitHubRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubRepository{client: httpClient, cfg: cfg, observer: observer, logger: logger}
}

// Org returns the organisation the repository reads from.
func (r *GitHubRepository) Org() string {
	return r.cfg.Org
}

// ListOrgEvents returns the most recent public events of the organisation, newest first.
func (r *GitHubRepository) ListOrgEvents(ctx context.Context, limit int) ([]models.GitHubEvent, error) {
	path := fmt.Sprintf("/orgs/%s/events", url.PathEscape(r.cfg.Org))
	var events []models.GitHubEvent
	if err := r.get(ctx, "events", path, pageQuery(limit), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListReleases returns published releases of one organisation repository.
func (r *GitHubRepository) ListReleases(ctx context.Context, repo string, limit int) ([]models.Release, error) {
	path := fmt.Sprintf("/repos/%s/%s/releases", url.PathEscape(r.cfg.Org), url.PathEscape(repo))
	var releases []models.Release
	if err := r.get(ctx, "releases", path, pageQuery(limit), &releases); err != nil {
		return nil, err
	}
	published := releases[:0]
	for _, release := range releases {
		if release.Draft {
			continue
		}
		release.Repository = repo
		published = append(published, release)
	}
	return published, nil
}

// SearchOpenIssues returns open organisation issues carrying any of labels,
// most recently updated first.
func (r *GitHubRepository) SearchOpenIssues(ctx context.Context, labels []string, limit int) ([]models.Issue, error) {
	query := pageQuery(limit)
	query.Set("q", issueSearchQuery(r.cfg.Org, labels))
	query.Set("sort", "updated")
	query.Set("order", "desc")

	var result struct {
		TotalCount int            `json:"total_count"`
		Items      []models.Issue `json:"items"`
	}
	if err := r.get(ctx, "search_issues", "/search/issues", query, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func issueSearchQuery(org string, labels []string) string {
	terms := []string{"org:" + org, "is:issue", "is:open"}
	if len(labels) > 0 {
		quoted := make([]string, 0, len(labels))
		for _, label := range labels {
			quoted = append(quoted, strconv.Quote(label))
		}
		terms = append(terms, "label:"+strings.Join(quoted, ","))
	}
	return strings.Join(terms, " ")
}

func pageQuery(limit int) url.Values {
	if limit <= 0 || limit > maxPerPage {
		limit = maxPerPage
	}
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))
	return q
}

func (r *GitHubRepository) get(ctx context.Context, endpoint, path string, query url.Values, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	target := r.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build github request")
	}
	req.Header.Set("Accept", githubAcceptHeader)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.observe(endpoint, 0, start)
		r.logger.Warn("github request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "github request failed")
	}
	defer resp.Body.Close()
	r.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		r.logger.Warn("github returned error status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("remaining", resp.Header.Get("X-RateLimit-Remaining")),
		)
		if resp.StatusCode == http.StatusNotFound {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("github %s not found", endpoint))
		}
		cause := fmt.Errorf("github %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
		return appErrors.Wrap(cause, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode github response")
	}
	return nil
}

func (r *GitHubRepository) observe(endpoint string, status int, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveUpstream(endpoint, status, time.Since(start))
	}
}
