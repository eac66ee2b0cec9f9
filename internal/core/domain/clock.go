package domain

import "time"

// TimeUnit selects the granularity for remaining-lifetime checks.
type TimeUnit string

const (
	UnitDays    TimeUnit = "days"
	UnitHours   TimeUnit = "hours"
	UnitMinutes TimeUnit = "minutes"
	UnitSeconds TimeUnit = "seconds"
)

// TimeParts holds the span between two instants projected into whole
// units. Each field is the total elapsed span expressed in that unit,
// not a remainder breakdown: Hours is total seconds / 3600 regardless
// of Days. A cutoff check in minutes therefore always agrees with an
// expiry check in seconds.
type TimeParts struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// TimeDifference computes end - start as whole-unit projections.
// end before start yields negative values, not an error.
func TimeDifference(start, end time.Time) TimeParts {
	secs := int64(end.Sub(start) / time.Second)
	return TimeParts{
		Days:    secs / 86400,
		Hours:   secs / 3600,
		Minutes: secs / 60,
		Seconds: secs,
	}
}

// In returns the projection for the given unit. Unknown units fall back
// to minutes, the policy engine's working granularity.
func (p TimeParts) In(unit TimeUnit) int64 {
	switch unit {
	case UnitDays:
		return p.Days
	case UnitHours:
		return p.Hours
	case UnitSeconds:
		return p.Seconds
	default:
		return p.Minutes
	}
}

// ExpiresIn reports how long remains until expiresAt in the given unit,
// measured from the current clock. Zero or negative means expired.
func ExpiresIn(expiresAt time.Time, unit TimeUnit) int64 {
	return TimeDifference(time.Now().UTC(), expiresAt).In(unit)
}
