package util

import (
	"math"
	"time"
)

// AddTimeToDate combines the calendar day of date with the clock time of sourceTime
func AddTimeToDate(date time.Time, sourceTime time.Time) time.Time {
	newDateTime := time.Date(date.Year(), date.Month(), date.Day(), sourceTime.Hour(), sourceTime.Minute(), sourceTime.Second(), sourceTime.Nanosecond(), date.Location())

	return newDateTime
}

// RoundTo rounds value to the given number of decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))

	return math.Round(value*factor) / factor
}
