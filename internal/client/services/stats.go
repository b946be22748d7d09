package services

import (
	"context"

	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/client/remote"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// StatsService reads statistics from the backend. There is no local
// fallback.
type StatsService struct {
	remote remote.Client
}

func NewStatsService(client remote.Client) *StatsService {
	return &StatsService{remote: client}
}

func (s *StatsService) MoodStats(ctx context.Context, period string) (*api.MoodStats, error) {
	if period == "" {
		period = common.DefaultPeriod
	}
	if _, ok := common.PeriodDays(period); !ok {
		return nil, common.NewValidationError("period", "must be one of 7d, 30d, all")
	}
	return s.remote.GetStats(ctx, period)
}

func (s *StatsService) Summary(ctx context.Context) (*api.Summary, error) {
	return s.remote.GetSummary(ctx)
}

func (s *StatsService) Activities(ctx context.Context) ([]api.Activity, error) {
	return s.remote.ListActivities(ctx)
}
