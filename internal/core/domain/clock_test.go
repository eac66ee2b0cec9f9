package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeDifference_TotalProjectionPerUnit(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(26*time.Hour + 30*time.Minute)

	parts := TimeDifference(start, end)

	// Each unit is the whole span, not a remainder breakdown.
	assert.Equal(t, int64(1), parts.Days)
	assert.Equal(t, int64(26), parts.Hours)
	assert.Equal(t, int64(26*60+30), parts.Minutes)
	assert.Equal(t, int64(26*3600+30*60), parts.Seconds)
}

func TestTimeDifference_UnitsAgreeOnExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	parts := TimeDifference(start, end)

	// "expires in 45 minutes" and "expires in 2700 seconds" must not
	// disagree, whichever unit a caller picks.
	assert.Equal(t, parts.Seconds/60, parts.Minutes)
	assert.Equal(t, parts.Seconds/3600, parts.Hours)
}

func TestTimeDifference_NegativeWhenEndBeforeStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(-90 * time.Minute)

	parts := TimeDifference(start, end)

	assert.Equal(t, int64(-90), parts.Minutes)
	assert.Equal(t, int64(-5400), parts.Seconds)
	assert.Equal(t, int64(-1), parts.Hours)
}

func TestTimePartsIn(t *testing.T) {
	parts := TimeParts{Days: 1, Hours: 26, Minutes: 1590, Seconds: 95400}

	assert.Equal(t, int64(1), parts.In(UnitDays))
	assert.Equal(t, int64(26), parts.In(UnitHours))
	assert.Equal(t, int64(1590), parts.In(UnitMinutes))
	assert.Equal(t, int64(95400), parts.In(UnitSeconds))
	assert.Equal(t, int64(1590), parts.In("fortnights"), "unknown units fall back to minutes")
}

func TestExpiresIn_FutureAndPast(t *testing.T) {
	d := 600 * time.Second

	secs := ExpiresIn(time.Now().UTC().Add(d), UnitSeconds)
	assert.InDelta(t, 600, secs, 1, "future expiry in seconds")

	secs = ExpiresIn(time.Now().UTC().Add(-d), UnitSeconds)
	assert.InDelta(t, -600, secs, 1, "past expiry is negative, not an error")
}
