package service

import (
	"encoding/json"

	"github.com/noah-isme/contrib-dashboard/internal/models"
)

// ActivityPoints is the score awarded per activity type.
var ActivityPoints = map[models.ActivityType]int{
	models.ActivityPROpened:      2,
	models.ActivityPRMerged:      5,
	models.ActivityPRReviewed:    2,
	models.ActivityIssueOpened:   1,
	models.ActivityIssueAssigned: 1,
	models.ActivityComment:       1,
	models.ActivityEODUpdate:     1,
}

type eventPayload struct {
	Action      string `json:"action"`
	PullRequest *struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
		Merged  bool   `json:"merged"`
	} `json:"pull_request"`
	Issue *struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"issue"`
	Comment *struct {
		HTMLURL string `json:"html_url"`
	} `json:"comment"`
	Review *struct {
		HTMLURL string `json:"html_url"`
	} `json:"review"`
}

// ActivityFromEvent scores a GitHub event. It reports false for events that do not
// earn points.
func ActivityFromEvent(event models.GitHubEvent) (models.Activity, bool) {
	if event.Actor.Login == "" || len(event.Payload) == 0 {
		return models.Activity{}, false
	}
	var payload eventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return models.Activity{}, false
	}

	var (
		kind        models.ActivityType
		title, link string
	)
	switch {
	case event.Type == "PullRequestEvent" && payload.PullRequest != nil:
		title, link = payload.PullRequest.Title, payload.PullRequest.HTMLURL
		switch {
		case payload.Action == "opened":
			kind = models.ActivityPROpened
		case payload.Action == "closed" && payload.PullRequest.Merged:
			kind = models.ActivityPRMerged
		}
	case event.Type == "PullRequestReviewEvent" && payload.Review != nil:
		kind, link = models.ActivityPRReviewed, payload.Review.HTMLURL
		if payload.PullRequest != nil {
			title = payload.PullRequest.Title
		}
	case event.Type == "IssuesEvent" && payload.Issue != nil:
		title, link = payload.Issue.Title, payload.Issue.HTMLURL
		switch payload.Action {
		case "opened":
			kind = models.ActivityIssueOpened
		case "assigned":
			kind = models.ActivityIssueAssigned
		}
	case event.Type == "IssueCommentEvent" && payload.Action == "created" && payload.Comment != nil:
		kind, link = models.ActivityComment, payload.Comment.HTMLURL
		if payload.Issue != nil {
			title = payload.Issue.Title
		}
	}
	if kind == "" {
		return models.Activity{}, false
	}

	activity := models.Activity{
		ID:         event.ID,
		GitHub:     event.Actor.Login,
		Type:       kind,
		Points:     ActivityPoints[kind],
		OccurredAt: event.CreatedAt,
	}
	if title != "" {
		activity.Title = &title
	}
	if link != "" {
		activity.Link = &link
	}
	return activity, true
}
