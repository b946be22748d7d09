// Package models defines server-side records persisted in PostgreSQL.
package models

import (
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// Mood is one journal entry. UserID is always taken from the verified
// token, never from request input.
type Mood struct {
	ID         int64
	UserID     int64
	MoodType   common.MoodType
	Note       *string
	PhotoURL   *string
	EntryDate  string
	EntryTime  string
	Activities []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MoodPatch lists the columns of a partial update. Nil fields are untouched.
// A non-nil empty Note or PhotoURL clears the column.
type MoodPatch struct {
	MoodType  *common.MoodType
	Note      *string
	PhotoURL  *string
	EntryDate *string
	EntryTime *string
}

// Empty reports whether the patch touches no column.
func (p *MoodPatch) Empty() bool {
	return p.MoodType == nil && p.Note == nil && p.PhotoURL == nil && p.EntryDate == nil && p.EntryTime == nil
}

// MoodFilter narrows a list query. Empty dates are ignored.
type MoodFilter struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

type Activity struct {
	ID   int64
	Name string
	Icon string
}
