package models

import (
	"encoding/json"
	"time"
)

// GitHubActor is the user attached to an upstream object.
type GitHubActor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubRepo is the repository reference carried by events.
type GitHubRepo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GitHubEvent is an organisation activity event as returned by the events API.
type GitHubEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     GitHubActor     `json:"actor"`
	Repo      GitHubRepo      `json:"repo"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
}

// Release is a published repository release.
type Release struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	TagName     string      `json:"tag_name"`
	HTMLURL     string      `json:"html_url"`
	Body        string      `json:"body"`
	Draft       bool        `json:"draft"`
	Prerelease  bool        `json:"prerelease"`
	Author      GitHubActor `json:"author"`
	PublishedAt time.Time   `json:"published_at"`
	Repository  string      `json:"repository"`
}

// Label is an issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue is an issue returned by the search API.
type Issue struct {
	ID            int64         `json:"id"`
	Number        int           `json:"number"`
	Title         string        `json:"title"`
	HTMLURL       string        `json:"html_url"`
	State         string        `json:"state"`
	RepositoryURL string        `json:"repository_url"`
	User          GitHubActor   `json:"user"`
	Assignees     []GitHubActor `json:"assignees"`
	Labels        []Label       `json:"labels"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Project is an active project derived from a labelled open issue.
type Project struct {
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Repository string        `json:"repository"`
	Labels     []string      `json:"labels"`
	Assignees  []GitHubActor `json:"assignees"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
