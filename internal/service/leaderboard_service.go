package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/contrib-dashboard/internal/models"
	"github.com/noah-isme/contrib-dashboard/pkg/daterange"
	appErrors "github.com/noah-isme/contrib-dashboard/pkg/errors"
	"github.com/noah-isme/contrib-dashboard/pkg/export"
)

type rankingStore interface {
	Ranked(ctx context.Context, from, to time.Time, limit int) ([]models.ContributorSummary, error)
}

// Export formats accepted by LeaderboardService.Export.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var leaderboardHeaders = []string{"Rank", "GitHub", "Name", "Points", "PRs Opened", "PRs Merged", "Reviews", "Issues", "Comments"}

// ExportFile is a rendered leaderboard document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// LeaderboardService ranks contributors by points for a date range.
type LeaderboardService struct {
	store     rankingStore
	exporters map[string]export.Exporter
	logger    *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(store rankingStore, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		store: store,
		exporters: map[string]export.Exporter{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(14, 40, 46),
		},
		logger: logger,
	}
}

// Leaderboard ranks contributors active on the calendar days of r, highest points
// first and ties broken by case-insensitive name, then login. Inverted ranges are swapped.
func (s *LeaderboardService) Leaderboard(ctx context.Context, r daterange.DateRange, limit int) (*models.Leaderboard, error) {
	r = r.Normalize()
	from, to := r.Bounds()

	summaries, err := s.store.Ranked(ctx, from, to, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank contributors")
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Summary.Points != summaries[j].Summary.Points {
			return summaries[i].Summary.Points > summaries[j].Summary.Points
		}
		left, right := strings.ToLower(summaries[i].Name), strings.ToLower(summaries[j].Name)
		if left != right {
			return left < right
		}
		return summaries[i].GitHub < summaries[j].GitHub
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(summaries))
	for i, summary := range summaries {
		entries = append(entries, models.LeaderboardEntry{Rank: i + 1, ContributorSummary: summary})
	}

	return &models.Leaderboard{
		Start:   r.Start,
		End:     r.End,
		Label:   daterange.TriggerLabel(r),
		Entries: entries,
	}, nil
}

// Export renders the full leaderboard for r as CSV or PDF.
func (s *LeaderboardService) Export(ctx context.Context, r daterange.DateRange, format string) (*ExportFile, error) {
	exporter, ok := s.exporters[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	board, err := s.Leaderboard(ctx, r, 0)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:    "Contributor Leaderboard",
		Subtitle: fmt.Sprintf("%s to %s", daterange.FormatDate(board.Start), daterange.FormatDate(board.End)),
		Headers:  leaderboardHeaders,
		Rows:     make([]map[string]string, 0, len(board.Entries)),
	}
	for _, entry := range board.Entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Rank":       strconv.Itoa(entry.Rank),
			"GitHub":     entry.GitHub,
			"Name":       entry.Name,
			"Points":     strconv.Itoa(entry.Summary.Points),
			"PRs Opened": strconv.Itoa(entry.Summary.PROpened),
			"PRs Merged": strconv.Itoa(entry.Summary.PRMerged),
			"Reviews":    strconv.Itoa(entry.Summary.PRReviewed),
			"Issues":     strconv.Itoa(entry.Summary.IssuesOpened),
			"Comments":   strconv.Itoa(entry.Summary.Comments),
		})
	}

	body, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render leaderboard export")
	}
	s.logger.Info("leaderboard exported", zap.String("format", exporter.Extension()), zap.Int("rows", len(dataset.Rows)))

	return &ExportFile{
		Filename: fmt.Sprintf("leaderboard_%s_%s.%s",
			daterange.InputValue(board.Start), daterange.InputValue(board.End), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}
