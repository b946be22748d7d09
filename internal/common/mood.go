package common

import "strings"

// MoodType is the closed set of moods an entry can carry.
type MoodType string

const (
	MoodHappy   MoodType = "happy"
	MoodSad     MoodType = "sad"
	MoodAngry   MoodType = "angry"
	MoodCalm    MoodType = "calm"
	MoodAnxious MoodType = "anxious"
)

// MoodTypes lists every valid mood in a stable order.
var MoodTypes = []MoodType{MoodHappy, MoodSad, MoodAngry, MoodCalm, MoodAnxious}

// Valid reports whether m is one of MoodTypes.
func (m MoodType) Valid() bool {
	for _, v := range MoodTypes {
		if m == v {
			return true
		}
	}
	return false
}

func (m MoodType) String() string {
	return string(m)
}

// ParseMoodType matches s case-insensitively against MoodTypes.
func ParseMoodType(s string) (MoodType, error) {
	m := MoodType(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", NewValidationError("moodType", "invalid mood type")
	}
	return m, nil
}
