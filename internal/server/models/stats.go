package models

import "github.com/dmitrijs2005/moodkeeper/internal/common"

type MoodCount struct {
	MoodType common.MoodType
	Count    int64
}

type TrendPoint struct {
	EntryDate string
	MoodType  common.MoodType
	Count     int64
}

type ActivityFrequency struct {
	Name      string
	Icon      string
	Frequency int64
}

type MoodStats struct {
	Distribution  []MoodCount
	Trend         []TrendPoint
	TopActivities []ActivityFrequency
	TotalEntries  int64
	Period        string
}

type Summary struct {
	TotalMoods       int64
	ThisWeek         int64
	ThisMonth        int64
	MostFrequentMood *MoodCount
}
