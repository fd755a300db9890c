package service

import (
	"math"
	"time"
)

// ComputeCharge derives the billable duration and charge for a completed
// stay. Partial minutes round up, and the charge never drops below the
// configured minimum. A negative interval is a clock problem the engine
// refuses to paper over.
func ComputeCharge(entryTime, exitTime time.Time, ratePerMinute, minimumCharge float64) (int64, float64, error) {
	if exitTime.Before(entryTime) {
		return 0, 0, ErrInvalidInterval
	}

	seconds := exitTime.Sub(entryTime).Seconds()
	minutes := int64(math.Ceil(seconds / 60.0))

	charge := float64(minutes) * ratePerMinute
	if charge < minimumCharge {
		charge = minimumCharge
	}
	charge = math.Round(charge*100) / 100

	return minutes, charge, nil
}
