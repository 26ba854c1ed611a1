package analytics

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseLookup resolves an exercise to the muscle groups it trains.
// ok is false when the exercise is unknown.
type ExerciseLookup func(exerciseID primitive.ObjectID) (muscleGroupIDs []primitive.ObjectID, ok bool)

// MuscleGroupVolume splits each implementation's volume evenly across the
// muscle groups of its exercise. Unknown exercises and exercises without
// muscle groups contribute nothing.
func MuscleGroupVolume(trainings []domain.Training, lookup ExerciseLookup) map[primitive.ObjectID]float64 {
	volumes := make(map[primitive.ObjectID]float64)
	for _, t := range completed(trainings) {
		for _, impl := range t.Implementations {
			groups, ok := lookup(impl.ExerciseID)
			if !ok || len(groups) == 0 {
				continue
			}
			share := ImplementationVolume(impl) / float64(len(groups))
			for _, g := range groups {
				volumes[g] += share
			}
		}
	}
	return volumes
}

// MuscleGroupFrequency counts, per muscle group, the distinct days it was
// trained.
func MuscleGroupFrequency(trainings []domain.Training, lookup ExerciseLookup) map[primitive.ObjectID]int {
	seen := make(map[primitive.ObjectID]map[time.Time]struct{})
	for _, t := range completed(trainings) {
		d := Day(t.DateTime)
		for _, impl := range t.Implementations {
			groups, ok := lookup(impl.ExerciseID)
			if !ok {
				continue
			}
			for _, g := range groups {
				if seen[g] == nil {
					seen[g] = make(map[time.Time]struct{})
				}
				seen[g][d] = struct{}{}
			}
		}
	}

	freq := make(map[primitive.ObjectID]int, len(seen))
	for g, days := range seen {
		freq[g] = len(days)
	}
	return freq
}
