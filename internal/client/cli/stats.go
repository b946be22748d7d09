package cli

import (
	"context"
	"fmt"
)

// Stats prints server-side statistics: stats [7d|30d|all].
func (a *App) Stats(ctx context.Context, args []string) error {
	period := ""
	if len(args) > 0 {
		period = args[0]
	}
	s, err := a.stats.MoodStats(ctx, period)
	if err != nil {
		return err
	}
	printlnFn(renderStats(s))
	return nil
}

func (a *App) Summary(ctx context.Context) error {
	s, err := a.stats.Summary(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Total entries: %d", s.TotalMoods))
	printlnFn(fmt.Sprintf("This week:     %d", s.ThisWeek))
	printlnFn(fmt.Sprintf("This month:    %d", s.ThisMonth))
	if s.MostFrequentMood != nil {
		printlnFn(fmt.Sprintf("Most frequent: %s (%d)", s.MostFrequentMood.MoodType, s.MostFrequentMood.Count))
	}
	return nil
}

func (a *App) Activities(ctx context.Context) error {
	list, err := a.stats.Activities(ctx)
	if err != nil {
		return err
	}
	for _, act := range list {
		printlnFn(fmt.Sprintf("%s %s", act.Icon, act.Name))
	}
	return nil
}
