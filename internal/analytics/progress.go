package analytics

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetsByDate collects the sets of exerciseID from COMPLETED trainings, keyed
// by calendar day.
func SetsByDate(trainings []domain.Training, exerciseID primitive.ObjectID) map[time.Time][]domain.Set {
	byDate := make(map[time.Time][]domain.Set)
	for _, t := range completed(trainings) {
		day := Day(t.DateTime)
		for _, impl := range t.Implementations {
			if impl.ExerciseID != exerciseID {
				continue
			}
			byDate[day] = append(byDate[day], impl.Sets...)
		}
	}
	return byDate
}

// WeightProgress returns the heaviest weight per date. Dates without sets are
// omitted.
func WeightProgress(setsByDate map[time.Time][]domain.Set) map[time.Time]float64 {
	progress := make(map[time.Time]float64)
	for date, sets := range setsByDate {
		if len(sets) == 0 {
			continue
		}
		heaviest := sets[0].Weight.Value()
		for _, s := range sets[1:] {
			if w := s.Weight.Value(); w > heaviest {
				heaviest = w
			}
		}
		progress[date] = heaviest
	}
	return progress
}

// VolumeProgress returns the total volume per date. Dates without sets are
// omitted.
func VolumeProgress(setsByDate map[time.Time][]domain.Set) map[time.Time]float64 {
	progress := make(map[time.Time]float64)
	for date, sets := range setsByDate {
		if len(sets) == 0 {
			continue
		}
		progress[date] = Volume(sets)
	}
	return progress
}

// OneRepMaxProgress returns the best estimated one-rep max per date. Sets with
// non-positive reps are skipped, and a date is kept only when it produced a
// positive estimate.
func OneRepMaxProgress(setsByDate map[time.Time][]domain.Set, formula string) (map[time.Time]float64, error) {
	f, err := ParseFormula(formula)
	if err != nil {
		return nil, err
	}

	progress := make(map[time.Time]float64)
	for date, sets := range setsByDate {
		var best float64
		for _, s := range sets {
			if s.Reps.Value() <= 0 {
				continue
			}
			estimate, err := OneRepMax(s.Weight.Value(), s.Reps.Value(), string(f))
			if err != nil {
				return nil, err
			}
			if estimate > best {
				best = estimate
			}
		}
		if best > 0 {
			progress[date] = best
		}
	}
	return progress, nil
}

// BMI computes body mass index from kilograms and centimeters.
func BMI(weight, heightCM float64) (float64, error) {
	if heightCM <= 0 {
		return 0, &domain.ValidationError{Field: "height", Reason: "must be > 0 to compute BMI"}
	}
	meters := heightCM / 100
	return weight / (meters * meters), nil
}

// WeightProgressFromMetrics maps each metric's day to its weight. Metrics
// without a weight are skipped.
func WeightProgressFromMetrics(metrics []domain.UserBodyMetric) map[time.Time]float64 {
	progress := make(map[time.Time]float64)
	for _, m := range metrics {
		if m.Weight == nil {
			continue
		}
		progress[Day(m.Date)] = *m.Weight
	}
	return progress
}

// BMIProgressFromMetrics maps each metric's day to its BMI. Only metrics that
// carry both weight and a positive height are used.
func BMIProgressFromMetrics(metrics []domain.UserBodyMetric) map[time.Time]float64 {
	progress := make(map[time.Time]float64)
	for _, m := range metrics {
		if m.Weight == nil || m.Height == nil {
			continue
		}
		bmi, err := BMI(*m.Weight, *m.Height)
		if err != nil {
			continue
		}
		progress[Day(m.Date)] = bmi
	}
	return progress
}
