package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

const (
	// DateLayout is the wire and storage format of entry dates (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of entry times (HH:MM:SS).
	TimeLayout = "15:04:05"
)

// MaxNoteLength bounds a mood note, counted in runes.
const MaxNoteLength = 1000

// Activity limits per mood entry.
const (
	MaxActivities         = 20
	MaxActivityNameLength = 50
)

// Statistics periods accepted by the stats endpoint.
const (
	Period7Days  = "7d"
	Period30Days = "30d"
	PeriodAll    = "all"

	DefaultPeriod = Period7Days
)

// PeriodDays returns the look-back window for a period, or 0 for "all".
// ok is false for unknown periods.
func PeriodDays(period string) (days int, ok bool) {
	switch period {
	case Period7Days:
		return 7, true
	case Period30Days:
		return 30, true
	case PeriodAll:
		return 0, true
	}
	return 0, false
}

// HealthServiceName is the grpc.health.v1 service the server reports next
// to the overall "" status.
const HealthServiceName = "moodkeeper.api"
