// Package api holds the JSON wire types shared by the HTTP server and the
// remote client. Every response is wrapped in an Envelope.
package api

import "time"

// Envelope is the uniform {success, message, data} response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72,nefield=CurrentPassword"`
}

// AuthData is returned by register and login.
type AuthData struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// MoodRequest is the create payload. EntryTime defaults to the server's
// current time when empty.
type MoodRequest struct {
	MoodType   string   `json:"moodType" validate:"required,moodtype"`
	Note       *string  `json:"note,omitempty" validate:"omitempty,max=1000"`
	PhotoURL   *string  `json:"photoUrl,omitempty" validate:"omitempty,max=500"`
	EntryDate  string   `json:"entryDate" validate:"required,entrydate"`
	EntryTime  string   `json:"entryTime,omitempty" validate:"omitempty,entrytime"`
	Activities []string `json:"activities,omitempty" validate:"max=20,dive,required,max=50"`
}

// MoodUpdateRequest is the partial update payload. Absent (or null) fields
// are left unchanged; an empty note or photoUrl clears the stored value.
type MoodUpdateRequest struct {
	MoodType   *string   `json:"moodType,omitempty" validate:"omitempty,moodtype"`
	Note       *string   `json:"note,omitempty" validate:"omitempty,max=1000"`
	PhotoURL   *string   `json:"photoUrl,omitempty" validate:"omitempty,max=500"`
	EntryDate  *string   `json:"entryDate,omitempty" validate:"omitempty,entrydate"`
	EntryTime  *string   `json:"entryTime,omitempty" validate:"omitempty,entrytime"`
	Activities *[]string `json:"activities,omitempty" validate:"omitempty,max=20,dive,required,max=50"`
}

// Empty reports whether no field was supplied.
func (r *MoodUpdateRequest) Empty() bool {
	return r.MoodType == nil && r.Note == nil && r.PhotoURL == nil &&
		r.EntryDate == nil && r.EntryTime == nil && r.Activities == nil
}

type MoodCreated struct {
	ID int64 `json:"id"`
}

type MoodResponse struct {
	ID         int64     `json:"id"`
	MoodType   string    `json:"moodType"`
	Note       *string   `json:"note"`
	PhotoURL   *string   `json:"photoUrl"`
	EntryDate  string    `json:"entryDate"`
	EntryTime  string    `json:"entryTime"`
	Activities []string  `json:"activities"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MoodFilter carries the list query parameters.
type MoodFilter struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type MoodCount struct {
	MoodType string `json:"moodType"`
	Count    int64  `json:"count"`
}

type TrendPoint struct {
	EntryDate string `json:"entryDate"`
	MoodType  string `json:"moodType"`
	Count     int64  `json:"count"`
}

type ActivityFrequency struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Frequency int64  `json:"frequency"`
}

type MoodStats struct {
	Distribution  []MoodCount         `json:"distribution"`
	Trend         []TrendPoint        `json:"trend"`
	TopActivities []ActivityFrequency `json:"topActivities"`
	TotalEntries  int64               `json:"totalEntries"`
	Period        string              `json:"period"`
}

type Activity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Summary struct {
	TotalMoods       int64      `json:"totalMoods"`
	ThisWeek         int64      `json:"thisWeek"`
	ThisMonth        int64      `json:"thisMonth"`
	MostFrequentMood *MoodCount `json:"mostFrequentMood"`
}

type PhotoUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RateLimited struct {
	RetryAfter int `json:"retryAfter"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
