package analytics

import (
	"sort"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PersonalRecord is the heaviest set ever completed for an exercise.
type PersonalRecord struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	Weight     float64            `json:"weight"`
	Reps       int                `json:"reps"`
	Date       time.Time          `json:"date"`
	TrainingID primitive.ObjectID `json:"trainingId"`
}

// ExercisePR returns the heaviest set of exerciseID across COMPLETED
// trainings, or nil when the exercise was never completed. Ties keep the
// first set found.
func ExercisePR(trainings []domain.Training, exerciseID primitive.ObjectID) *PersonalRecord {
	var pr *PersonalRecord
	for _, t := range completed(trainings) {
		for _, impl := range t.Implementations {
			if impl.ExerciseID != exerciseID {
				continue
			}
			for _, s := range impl.Sets {
				if pr == nil || s.Weight.Value() > pr.Weight {
					pr = newRecord(t, impl, s)
				}
			}
		}
	}
	return pr
}

// AllPRs returns one record per exercise, heaviest first.
func AllPRs(trainings []domain.Training) []PersonalRecord {
	byExercise := make(map[primitive.ObjectID]int)
	var records []PersonalRecord
	for _, t := range completed(trainings) {
		for _, impl := range t.Implementations {
			for _, s := range impl.Sets {
				idx, seen := byExercise[impl.ExerciseID]
				if !seen {
					byExercise[impl.ExerciseID] = len(records)
					records = append(records, *newRecord(t, impl, s))
					continue
				}
				if s.Weight.Value() > records[idx].Weight {
					records[idx] = *newRecord(t, impl, s)
				}
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Weight > records[j].Weight
	})
	return records
}

func newRecord(t domain.Training, impl domain.Implementation, s domain.Set) *PersonalRecord {
	return &PersonalRecord{
		ExerciseID: impl.ExerciseID,
		Weight:     s.Weight.Value(),
		Reps:       s.Reps.Value(),
		Date:       t.DateTime,
		TrainingID: t.ID,
	}
}
