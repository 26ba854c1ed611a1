package analytics

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"
)

// Day truncates t to midnight UTC of its UTC calendar date, so a training
// keys to the same day whatever offset it was stored with.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Volume is the sum of weight x reps over sets.
func Volume(sets []domain.Set) float64 {
	var total float64
	for _, s := range sets {
		total += s.Weight.Value() * float64(s.Reps.Value())
	}
	return total
}

func ImplementationVolume(impl domain.Implementation) float64 {
	return Volume(impl.Sets)
}

func TrainingVolume(t domain.Training) float64 {
	var total float64
	for _, impl := range t.Implementations {
		total += ImplementationVolume(impl)
	}
	return total
}

// completed filters out everything but COMPLETED trainings.
func completed(trainings []domain.Training) []domain.Training {
	out := make([]domain.Training, 0, len(trainings))
	for _, t := range trainings {
		if t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out
}

// Frequency counts COMPLETED trainings per calendar day.
func Frequency(trainings []domain.Training) map[time.Time]int {
	freq := make(map[time.Time]int)
	for _, t := range completed(trainings) {
		freq[Day(t.DateTime)]++
	}
	return freq
}

// TotalVolumeByDate sums the volume of COMPLETED trainings per calendar day.
func TotalVolumeByDate(trainings []domain.Training) map[time.Time]float64 {
	volumes := make(map[time.Time]float64)
	for _, t := range completed(trainings) {
		volumes[Day(t.DateTime)] += TrainingVolume(t)
	}
	return volumes
}
