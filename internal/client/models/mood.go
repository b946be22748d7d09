// Package models defines the records the client keeps on disk.
package models

import (
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// MoodEntry is one locally stored journal entry.
//
// ID is the local identity and never leaves the device. ServerID is set after
// the first successful remote create; IsSynced reports whether the server
// holds the current version of the row.
type MoodEntry struct {
	ID         int64
	ServerID   *int64
	MoodType   common.MoodType
	Note       *string
	PhotoPath  *string
	PhotoURL   *string
	EntryDate  string
	EntryTime  string
	Activities []string
	IsSynced   bool
	CreatedAt  time.Time
}

// Clone returns a deep copy, so snapshots handed to subscribers cannot be
// mutated through shared pointers.
func (m *MoodEntry) Clone() *MoodEntry {
	if m == nil {
		return nil
	}
	c := *m
	c.ServerID = clonePtr(m.ServerID)
	c.Note = clonePtr(m.Note)
	c.PhotoPath = clonePtr(m.PhotoPath)
	c.PhotoURL = clonePtr(m.PhotoURL)
	if m.Activities != nil {
		c.Activities = append([]string(nil), m.Activities...)
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Session is the authenticated identity of the CLI user. An empty Token
// means logged out.
type Session struct {
	UserID   int64
	Email    string
	Username string
	Token    string
}
