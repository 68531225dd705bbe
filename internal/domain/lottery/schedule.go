package lottery

import (
	"sync"
	"time"
)

const drawingHour = 23

var drawingDays = map[time.Weekday]bool{
	time.Monday:    true,
	time.Wednesday: true,
	time.Saturday:  true,
}

var easternTime = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
})

// LastDrawing returns the most recent Mon/Wed/Sat 23:00 Eastern at or before now.
func LastDrawing(now time.Time) time.Time {
	local := now.In(easternTime())
	for back := 0; back < 8; back++ {
		day := local.AddDate(0, 0, -back)
		if !drawingDays[day.Weekday()] {
			continue
		}
		draw := time.Date(day.Year(), day.Month(), day.Day(), drawingHour, 0, 0, 0, local.Location())
		if !draw.After(local) {
			return draw
		}
	}
	return local.AddDate(0, 0, -1)
}

// NextDrawing returns the first Mon/Wed/Sat 23:00 Eastern strictly after now.
func NextDrawing(now time.Time) time.Time {
	local := now.In(easternTime())
	for ahead := 0; ahead < 8; ahead++ {
		day := local.AddDate(0, 0, ahead)
		if !drawingDays[day.Weekday()] {
			continue
		}
		draw := time.Date(day.Year(), day.Month(), day.Day(), drawingHour, 0, 0, 0, local.Location())
		if draw.After(local) {
			return draw
		}
	}
	return local.AddDate(0, 0, 1)
}

// FreshSince reports whether data refreshed at updated still reflects the latest drawing.
func FreshSince(updated, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return updated.After(LastDrawing(now))
}
