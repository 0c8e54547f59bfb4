package analytics

import "time"

func timeNowMinusHours(hours float64) time.Time {
	return time.Now().Add(-time.Duration(hours * float64(time.Hour)))
}
