package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

var summaryHeader = []string{
	"github", "name", "avatar_url", "title", "bio", "joined_at",
	"points", "pr_opened", "pr_merged", "pr_reviewed", "issue_opened", "issue_assigned", "comment_created", "eod_update",
}

type queryCounter map[string]int

func (q queryCounter) ObserveDBQuery(label string, _ time.Duration) { q[label]++ }

func newContributorRepoMock(t *testing.T) (*ContributorRepository, sqlmock.Sqlmock, queryCounter) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	counter := queryCounter{}
	return NewContributorRepository(sqlx.NewDb(db, "sqlmock"), counter), mock, counter
}

func window() (time.Time, time.Time) {
	from := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 8)
}

func TestContributorRepositoryRanked(t *testing.T) {
	repo, mock, counter := newContributorRepoMock(t)
	from, to := window()
	joined := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(summaryHeader).
		AddRow("octocat", "Octo Cat", "https://avatars/1", nil, nil, joined, 12, 2, 1, 0, 1, 0, 3, 0).
		AddRow("hubot", "Hubot", nil, "Bot", nil, joined, 4, 0, 0, 2, 0, 0, 0, 0)
	mock.ExpectQuery(`JOIN activities a ON a.contributor_github = c.github\s+WHERE a.occurred_at >= \$1 AND a.occurred_at < \$2.*ORDER BY points DESC, LOWER\(c\.name\) ASC, c\.github ASC LIMIT \$3`).
		WithArgs(from, to, 5).
		WillReturnRows(rows)

	ranked, err := repo.Ranked(context.Background(), from, to, 5)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "octocat", ranked[0].GitHub)
	assert.Equal(t, 12, ranked[0].Summary.Points)
	assert.Equal(t, 3, ranked[0].Summary.Comments)
	require.NotNil(t, ranked[1].Title)
	assert.Equal(t, "Bot", *ranked[1].Title)
	assert.Equal(t, 1, counter["contributors_ranked"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepositoryRankedWithoutLimit(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)
	from, to := window()

	mock.ExpectQuery(`ORDER BY points DESC, LOWER\(c\.name\) ASC, c\.github ASC$`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(summaryHeader))

	ranked, err := repo.Ranked(context.Background(), from, to, 0)
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepositoryList(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)
	from, to := window()

	mock.ExpectQuery(`LEFT JOIN activities a .* WHERE 1=1 AND \(LOWER\(c.github\) LIKE \$3 OR LOWER\(c.name\) LIKE \$3\).*LIMIT 10 OFFSET 10`).
		WithArgs(from, to, "%oct%").
		WillReturnRows(sqlmock.NewRows(summaryHeader).AddRow("octocat", "Octo Cat", nil, nil, nil, time.Now(), 0, 0, 0, 0, 0, 0, 0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contributors c WHERE 1=1 AND (LOWER(c.github) LIKE $1 OR LOWER(c.name) LIKE $1)`)).
		WithArgs("%oct%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	list, total, err := repo.List(context.Background(), models.ContributorFilter{Search: "Oct", Page: 2, PageSize: 10}, from, to)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepositoryFindByGitHub(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM contributors WHERE LOWER(github) = LOWER($1)`)).
		WithArgs("OctoCat").
		WillReturnRows(sqlmock.NewRows([]string{"github", "name", "avatar_url", "title", "bio", "joined_at"}).
			AddRow("octocat", "Octo Cat", nil, nil, "hi", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM contributors WHERE LOWER(github) = LOWER($1)`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	found, err := repo.FindByGitHub(context.Background(), "OctoCat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", found.GitHub)

	_, err = repo.FindByGitHub(context.Background(), "ghost")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepositoryListActivities(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)
	from, to := window()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM activities`)).
		WithArgs("octocat", from, to, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "contributor_github", "type", "title", "link", "points", "occurred_at"}).
			AddRow("evt-1", "octocat", "pr_merged", "Add picker", nil, 5, to.Add(-time.Hour)))

	activities, err := repo.ListActivities(context.Background(), "octocat", from, to, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityPRMerged, activities[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepositoryInsertActivities(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO activities").
		WithArgs("evt-1", "octocat", models.ActivityPROpened, nil, nil, 2, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activities").
		WithArgs("evt-2", "octocat", models.ActivityComment, nil, nil, 1, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := repo.InsertActivities(context.Background(), []models.Activity{
		{ID: "evt-1", GitHub: "octocat", Type: models.ActivityPROpened, Points: 2, OccurredAt: now},
		{ID: "evt-2", GitHub: "octocat", Type: models.ActivityComment, Points: 1, OccurredAt: now},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())

	n, err = repo.InsertActivities(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContributorRepositoryUpsertAndCount(t *testing.T) {
	repo, mock, _ := newContributorRepoMock(t)
	avatar := "https://avatars/1"

	mock.ExpectExec("INSERT INTO contributors .* ON CONFLICT \\(github\\)").
		WithArgs("octocat", "octocat", &avatar, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM contributors`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	require.NoError(t, repo.UpsertContributor(context.Background(), &models.Contributor{GitHub: "octocat", Name: "octocat", AvatarURL: &avatar, JoinedAt: time.Now()}))
	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
