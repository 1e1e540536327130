package timezone

import "time"

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

var defaultTimezone = "Europe/Madrid"

// SetDefault changes the fallback zone used when an organization has none.
// Invalid names are ignored.
func SetDefault(tz string) {
	if IsValid(tz) {
		defaultTimezone = tz
	}
}

func Default() string {
	return defaultTimezone
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(defaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate parses "YYYY-MM-DD" as local midnight in tz.
func ParseDate(tz, value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location(tz))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinutesOfDay returns the wall-clock minute of t (0..1439).
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
