package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contrib-dashboard/internal/models"
)

func event(kind, payload string) models.GitHubEvent {
	return models.GitHubEvent{
		ID:        "evt-" + kind,
		Type:      kind,
		Actor:     models.GitHubActor{Login: "octocat"},
		Payload:   json.RawMessage(payload),
		CreatedAt: at(12, 8),
	}
}

func TestActivityFromEvent(t *testing.T) {
	cases := []struct {
		name   string
		event  models.GitHubEvent
		kind   models.ActivityType
		points int
		title  string
	}{
		{"pr opened", event("PullRequestEvent", `{"action":"opened","pull_request":{"title":"Add picker","html_url":"u"}}`), models.ActivityPROpened, 2, "Add picker"},
		{"pr merged", event("PullRequestEvent", `{"action":"closed","pull_request":{"title":"Add picker","merged":true}}`), models.ActivityPRMerged, 5, "Add picker"},
		{"review", event("PullRequestReviewEvent", `{"action":"created","review":{"html_url":"r"},"pull_request":{"title":"Fix"}}`), models.ActivityPRReviewed, 2, "Fix"},
		{"issue opened", event("IssuesEvent", `{"action":"opened","issue":{"title":"Bug"}}`), models.ActivityIssueOpened, 1, "Bug"},
		{"issue assigned", event("IssuesEvent", `{"action":"assigned","issue":{"title":"Bug"}}`), models.ActivityIssueAssigned, 1, "Bug"},
		{"comment", event("IssueCommentEvent", `{"action":"created","comment":{"html_url":"c"},"issue":{"title":"Bug"}}`), models.ActivityComment, 1, "Bug"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			activity, ok := ActivityFromEvent(tc.event)
			require.True(t, ok)
			assert.Equal(t, tc.kind, activity.Type)
			assert.Equal(t, tc.points, activity.Points)
			assert.Equal(t, "octocat", activity.GitHub)
			assert.Equal(t, tc.event.ID, activity.ID)
			require.NotNil(t, activity.Title)
			assert.Equal(t, tc.title, *activity.Title)
		})
	}
}

func TestActivityFromEventIgnoresUnscored(t *testing.T) {
	for _, e := range []models.GitHubEvent{
		event("PushEvent", `{"ref":"main"}`),
		event("PullRequestEvent", `{"action":"closed","pull_request":{"merged":false}}`),
		event("IssuesEvent", `{"action":"closed","issue":{}}`),
		event("IssueCommentEvent", `{"action":"deleted","comment":{}}`),
		event("IssuesEvent", `not json`),
		{Type: "IssuesEvent", Payload: json.RawMessage(`{"action":"opened","issue":{}}`)},
	} {
		_, ok := ActivityFromEvent(e)
		assert.False(t, ok, e.Type)
	}
}
