package dto

import (
	"time"

	"github.com/noah-isme/contrib-dashboard/internal/models"
)

// HomeResponse captures the composed home page payload.
type HomeResponse struct {
	Org              OrgSection                  `json:"org"`
	Events           []models.GitHubEvent        `json:"events"`
	Releases         []models.Release            `json:"releases"`
	Projects         []models.Project            `json:"projects"`
	Contributors     []models.ContributorSummary `json:"contributors"`
	MoreContributors int                         `json:"moreContributors"`
	Leaderboard      LeaderboardSection          `json:"leaderboard"`
	Degraded         []string                    `json:"degraded,omitempty"`
	GeneratedAt      time.Time                   `json:"generatedAt"`
}

// OrgSection is the free text describing the organisation.
type OrgSection struct {
	Name             string `json:"name"`
	Info             string `json:"info,omitempty"`
	ContributorsInfo string `json:"contributorsInfo,omitempty"`
}

// LeaderboardSection is the side panel ranking of the home page.
type LeaderboardSection struct {
	Caption string                    `json:"caption"`
	Entries []models.LeaderboardEntry `json:"entries"`
}
