package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
	"github.com/dmitrijs2005/moodkeeper/internal/server/repositories/repomanager"
)

const (
	trendDays        = 30
	topActivityCount = 5
)

type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewStatsService(db *sql.DB, repomanager repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: repomanager, now: time.Now}
}

// since returns the inclusive lower entry_date bound for a look-back of
// days, or "" for no bound.
func (s *StatsService) since(days int) string {
	if days <= 0 {
		return ""
	}
	return s.now().AddDate(0, 0, -days).Format(common.DateLayout)
}

func (s *StatsService) MoodStats(ctx context.Context, userID int64, period string) (*models.MoodStats, error) {
	period, days, err := periodDays(period)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Stats(s.db)
	since := s.since(days)

	dist, err := repo.Distribution(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("error getting distribution: %w", err)
	}

	trend, err := repo.Trend(ctx, userID, s.since(trendDays))
	if err != nil {
		return nil, fmt.Errorf("error getting trend: %w", err)
	}

	top, err := repo.TopActivities(ctx, userID, since, topActivityCount)
	if err != nil {
		return nil, fmt.Errorf("error getting top activities: %w", err)
	}

	total, err := repo.CountSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("error counting entries: %w", err)
	}

	return &models.MoodStats{
		Distribution:  dist,
		Trend:         trend,
		TopActivities: top,
		TotalEntries:  total,
		Period:        period,
	}, nil
}

func (s *StatsService) Activities(ctx context.Context) ([]*models.Activity, error) {
	a, err := s.repomanager.Activities(s.db).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}
	return a, nil
}

func (s *StatsService) Summary(ctx context.Context, userID int64) (*models.Summary, error) {
	repo := s.repomanager.Stats(s.db)

	total, err := repo.CountSince(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("error counting entries: %w", err)
	}
	week, err := repo.CountSince(ctx, userID, s.since(7))
	if err != nil {
		return nil, fmt.Errorf("error counting entries: %w", err)
	}
	month, err := repo.CountSince(ctx, userID, s.since(30))
	if err != nil {
		return nil, fmt.Errorf("error counting entries: %w", err)
	}
	top, err := repo.MostFrequent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting most frequent mood: %w", err)
	}

	return &models.Summary{TotalMoods: total, ThisWeek: week, ThisMonth: month, MostFrequentMood: top}, nil
}
