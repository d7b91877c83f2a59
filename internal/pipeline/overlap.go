package pipeline

import "time"

// Overlap returns the seconds shared by [eventStart, eventEnd) and [binStart, binEnd).
// The result is never negative.
func Overlap(eventStart, eventEnd, binStart, binEnd time.Time) float64 {
	lo := eventStart
	if binStart.After(lo) {
		lo = binStart
	}
	hi := eventEnd
	if binEnd.Before(hi) {
		hi = binEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo).Seconds()
}
