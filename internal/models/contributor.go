package models

import "time"

// ActivityType enumerates contribution events recorded for a contributor.
type ActivityType string

const (
	ActivityPROpened      ActivityType = "pr_opened"
	ActivityPRMerged      ActivityType = "pr_merged"
	ActivityPRReviewed    ActivityType = "pr_reviewed"
	ActivityIssueOpened   ActivityType = "issue_opened"
	ActivityIssueAssigned ActivityType = "issue_assigned"
	ActivityComment       ActivityType = "comment_created"
	ActivityEODUpdate     ActivityType = "eod_update"
)

// Contributor is a community member tracked by the dashboard.
type Contributor struct {
	GitHub    string    `db:"github" json:"github"`
	Name      string    `db:"name" json:"name"`
	AvatarURL *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	Title     *string   `db:"title" json:"title,omitempty"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	JoinedAt  time.Time `db:"joined_at" json:"joinedAt"`
}

// ActivitySummary aggregates a contributor's activity over a window.
type ActivitySummary struct {
	Points         int `db:"points" json:"points"`
	PROpened       int `db:"pr_opened" json:"prOpened"`
	PRMerged       int `db:"pr_merged" json:"prMerged"`
	PRReviewed     int `db:"pr_reviewed" json:"prReviewed"`
	IssuesOpened   int `db:"issue_opened" json:"issuesOpened"`
	IssuesAssigned int `db:"issue_assigned" json:"issuesAssigned"`
	Comments       int `db:"comment_created" json:"comments"`
	EODUpdates     int `db:"eod_update" json:"eodUpdates"`
}

// ContributorSummary couples a contributor with its activity summary.
type ContributorSummary struct {
	Contributor
	Summary ActivitySummary `json:"summary"`
}

// Activity is a single scored contribution.
type Activity struct {
	ID         string       `db:"id" json:"id"`
	GitHub     string       `db:"contributor_github" json:"github"`
	Type       ActivityType `db:"type" json:"type"`
	Title      *string      `db:"title" json:"title,omitempty"`
	Link       *string      `db:"link" json:"link,omitempty"`
	Points     int          `db:"points" json:"points"`
	OccurredAt time.Time    `db:"occurred_at" json:"occurredAt"`
}

// ContributorDetail is the profile page payload.
type ContributorDetail struct {
	Contributor
	WeekSummary ActivitySummary `json:"weekSummary"`
	Activities  []Activity      `json:"activities"`
}

// ContributorFilter narrows contributor listings.
type ContributorFilter struct {
	Search   string
	Page     int
	PageSize int
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	ContributorSummary
}

// Leaderboard ranks contributors over a date window.
type Leaderboard struct {
	Start   time.Time          `json:"start"`
	End     time.Time          `json:"end"`
	Label   string             `json:"label"`
	Entries []LeaderboardEntry `json:"entries"`
}
