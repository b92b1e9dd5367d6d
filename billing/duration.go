package billing

import (
	"math"
	"time"
)

const msPerHour = 3_600_000

// Elapsed converts a checkin/checkout pair into whole hours and whole days,
// both rounded up. Checkout before checkin is not validated.
func Elapsed(checkin, checkout time.Time) (hours, days int) {
	ms := checkout.Sub(checkin).Milliseconds()
	hours = int(math.Ceil(float64(ms) / msPerHour))
	days = int(math.Ceil(float64(hours) / 24))
	return hours, days
}

// Classify picks the pricing tier from the checkin hour-of-day and the
// elapsed hours. Nightly wins over daily, daily over hourly.
func Classify(checkinHour, hours int) Tier {
	switch {
	case checkinHour >= nightlyCheckinHour:
		return TierNightly
	case hours > dailyThresholdHours:
		return TierDaily
	default:
		return TierHourly
	}
}
