package httpapi

import (
	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/server/models"
)

func toMoodResponse(m *models.Mood) api.MoodResponse {
	activities := m.Activities
	if activities == nil {
		activities = []string{}
	}
	return api.MoodResponse{
		ID:         m.ID,
		MoodType:   m.MoodType.String(),
		Note:       m.Note,
		PhotoURL:   m.PhotoURL,
		EntryDate:  m.EntryDate,
		EntryTime:  m.EntryTime,
		Activities: activities,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toMoodCount(c models.MoodCount) api.MoodCount {
	return api.MoodCount{MoodType: c.MoodType.String(), Count: c.Count}
}

func toMoodStats(st *models.MoodStats) api.MoodStats {
	out := api.MoodStats{
		Distribution:  make([]api.MoodCount, 0, len(st.Distribution)),
		Trend:         make([]api.TrendPoint, 0, len(st.Trend)),
		TopActivities: make([]api.ActivityFrequency, 0, len(st.TopActivities)),
		TotalEntries:  st.TotalEntries,
		Period:        st.Period,
	}
	for _, d := range st.Distribution {
		out.Distribution = append(out.Distribution, toMoodCount(d))
	}
	for _, t := range st.Trend {
		out.Trend = append(out.Trend, api.TrendPoint{EntryDate: t.EntryDate, MoodType: t.MoodType.String(), Count: t.Count})
	}
	for _, a := range st.TopActivities {
		out.TopActivities = append(out.TopActivities, api.ActivityFrequency(a))
	}
	return out
}

func toSummary(s *models.Summary) api.Summary {
	out := api.Summary{
		TotalMoods: s.TotalMoods,
		ThisWeek:   s.ThisWeek,
		ThisMonth:  s.ThisMonth,
	}
	if s.MostFrequentMood != nil {
		c := toMoodCount(*s.MostFrequentMood)
		out.MostFrequentMood = &c
	}
	return out
}
