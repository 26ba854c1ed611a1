package analytics

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"
)

const day = 24 * time.Hour

// Streak counts consecutive calendar days with a COMPLETED training, walking
// back from the most recent one. The streak is still alive when the most
// recent training was today or yesterday; anything older resets it to zero.
func Streak(trainings []domain.Training, today time.Time) int {
	days := make(map[time.Time]struct{})
	var mostRecent time.Time
	for _, t := range completed(trainings) {
		d := Day(t.DateTime)
		days[d] = struct{}{}
		if d.After(mostRecent) {
			mostRecent = d
		}
	}
	if len(days) == 0 {
		return 0
	}

	if Day(today).Sub(mostRecent) > day {
		return 0
	}

	streak := 0
	for d := mostRecent; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d]; !ok {
			break
		}
		streak++
	}
	return streak
}
