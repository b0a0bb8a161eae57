package game

import "time"

// The virtual clock is pure arithmetic over the persisted game time;
// the owning Service decides when to run day handlers based on the
// idempotence stamps, not on these helpers alone.

// AdvanceClock applies a wall-clock delta at the acceleration ratio.
// Time only moves forward; a non-positive delta is ignored.
func AdvanceClock(gameTime time.Time, realElapsed time.Duration, ratio float64) time.Time {
	if realElapsed <= 0 || ratio <= 0 {
		return gameTime
	}
	virtual := time.Duration(float64(realElapsed) * ratio)
	return gameTime.Add(virtual)
}

// DayCrossed reports whether the calendar date changed between two
// instants of virtual time.
func DayCrossed(before, after time.Time) bool {
	return !StampOfDay(before).Equal(StampOfDay(after))
}

// MonthCrossed reports a calendar-month change, independent of day
// detection.
func MonthCrossed(before, after time.Time) bool {
	return !StampOfMonth(before).Equal(StampOfMonth(after))
}
