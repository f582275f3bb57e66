package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
)

// QueryObserver records contributor store query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// summaryColumns aggregates the activities joined as "a" into an ActivitySummary.
const summaryColumns = `COALESCE(SUM(a.points), 0) AS points,
	COUNT(a.id) FILTER (WHERE a.type = 'pr_opened') AS pr_opened,
	COUNT(a.id) FILTER (WHERE a.type = 'pr_merged') AS pr_merged,
	COUNT(a.id) FILTER (WHERE a.type = 'pr_reviewed') AS pr_reviewed,
	COUNT(a.id) FILTER (WHERE a.type = 'issue_opened') AS issue_opened,
	COUNT(a.id) FILTER (WHERE a.type = 'issue_assigned') AS issue_assigned,
	COUNT(a.id) FILTER (WHERE a.type = 'comment_created') AS comment_created,
	COUNT(a.id) FILTER (WHERE a.type = 'eod_update') AS eod_update`

const contributorColumns = "c.github, c.name, c.avatar_url, c.title, c.bio, c.joined_at"

type summaryRow struct {
	models.Contributor
	models.ActivitySummary
}

func (r summaryRow) toModel() models.ContributorSummary {
	return models.ContributorSummary{Contributor: r.Contributor, Summary: r.ActivitySummary}
}

// ContributorRepository manages contributors and their scored activity.
type ContributorRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewContributorRepository constructs a ContributorRepository.
func NewContributorRepository(db *sqlx.DB, observer QueryObserver) *ContributorRepository {
	return &ContributorRepository{db: db, observer: observer}
}

// List returns contributors with their activity summary in [from, to), ordered by
// points, along with the total number of matching contributors.
func (r *ContributorRepository) List(ctx context.Context, filter models.ContributorFilter, from, to time.Time) ([]models.ContributorSummary, int, error) {
	defer r.observe("contributors_list", time.Now())

	where, filterArgs := contributorFilterClause(filter, 3)
	countWhere, _ := contributorFilterClause(filter, 1)
	args := append([]interface{}{from, to}, filterArgs...)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, %s
FROM contributors c
LEFT JOIN activities a ON a.contributor_github = c.github AND a.occurred_at >= $1 AND a.occurred_at < $2
%s
GROUP BY c.github
ORDER BY points DESC, LOWER(c.name) ASC, c.github ASC
LIMIT %d OFFSET %d`, contributorColumns, summaryColumns, where, size, offset)

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contributors: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM contributors c " + countWhere
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filterArgs...); err != nil {
		return nil, 0, fmt.Errorf("count contributors: %w", err)
	}

	result := make([]models.ContributorSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, total, nil
}

// contributorFilterClause renders the WHERE clause for filter with placeholders
// numbered from first.
func contributorFilterClause(filter models.ContributorFilter, first int) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where += fmt.Sprintf(" AND (LOWER(c.github) LIKE $%d OR LOWER(c.name) LIKE $%d)", first, first)
	}
	return where, args
}

// Ranked returns contributors with at least one activity in [from, to), highest
// points first. A non-positive limit returns everyone.
func (r *ContributorRepository) Ranked(ctx context.Context, from, to time.Time, limit int) ([]models.ContributorSummary, error) {
	defer r.observe("contributors_ranked", time.Now())

	query := fmt.Sprintf(`SELECT %s, %s
FROM contributors c
JOIN activities a ON a.contributor_github = c.github
WHERE a.occurred_at >= $1 AND a.occurred_at < $2
GROUP BY c.github
ORDER BY points DESC, LOWER(c.name) ASC, c.github ASC`, contributorColumns, summaryColumns)
	args := []interface{}{from, to}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("rank contributors: %w", err)
	}
	result := make([]models.ContributorSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

// FindByGitHub fetches a contributor by GitHub login.
func (r *ContributorRepository) FindByGitHub(ctx context.Context, github string) (*models.Contributor, error) {
	defer r.observe("contributors_find", time.Now())

	const query = `SELECT github, name, avatar_url, title, bio, joined_at FROM contributors WHERE LOWER(github) = LOWER($1)`
	var contributor models.Contributor
	if err := r.db.GetContext(ctx, &contributor, query, github); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contributor not found")
		}
		return nil, fmt.Errorf("find contributor %s: %w", github, err)
	}
	return &contributor, nil
}

// ListActivities returns a contributor's activities in [from, to), newest first.
func (r *ContributorRepository) ListActivities(ctx context.Context, github string, from, to time.Time, limit int) ([]models.Activity, error) {
	defer r.observe("activities_list", time.Now())

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT id, contributor_github, type, title, link, points, occurred_at
FROM activities
WHERE contributor_github = $1 AND occurred_at >= $2 AND occurred_at < $3
ORDER BY occurred_at DESC
LIMIT $4`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, github, from, to, limit); err != nil {
		return nil, fmt.Errorf("list activities for %s: %w", github, err)
	}
	return activities, nil
}

// Count returns the number of known contributors.
func (r *ContributorRepository) Count(ctx context.Context) (int, error) {
	defer r.observe("contributors_count", time.Now())

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM contributors`); err != nil {
		return 0, fmt.Errorf("count contributors: %w", err)
	}
	return total, nil
}

// UpsertContributor inserts a contributor or refreshes its avatar.
func (r *ContributorRepository) UpsertContributor(ctx context.Context, contributor *models.Contributor) error {
	defer r.observe("contributors_upsert", time.Now())

	const query = `INSERT INTO contributors (github, name, avatar_url, title, bio, joined_at)
VALUES (:github, :name, :avatar_url, :title, :bio, :joined_at)
ON CONFLICT (github) DO UPDATE SET avatar_url = COALESCE(EXCLUDED.avatar_url, contributors.avatar_url)`
	if _, err := r.db.NamedExecContext(ctx, query, contributor); err != nil {
		return fmt.Errorf("upsert contributor %s: %w", contributor.GitHub, err)
	}
	return nil
}

// InsertActivities stores activities, ignoring ones already recorded. It returns the
// number of new rows.
func (r *ContributorRepository) InsertActivities(ctx context.Context, activities []models.Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}
	defer r.observe("activities_insert", time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin activities insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO activities (id, contributor_github, type, title, link, points, occurred_at)
VALUES (:id, :contributor_github, :type, :title, :link, :points, :occurred_at)
ON CONFLICT (id) DO NOTHING`
	inserted := 0
	for i := range activities {
		res, err := tx.NamedExecContext(ctx, query, &activities[i])
		if err != nil {
			return 0, fmt.Errorf("insert activity %s: %w", activities[i].ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit activities insert: %w", err)
	}
	return inserted, nil
}

// Ping reports whether the store is reachable.
func (r *ContributorRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ContributorRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}
