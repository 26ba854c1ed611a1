package service

import (
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetInput carries the raw values of one set before validation.
type SetInput struct {
	OrderIndex int
	Weight     float64
	Reps       int
	RestTime   *int
	Duration   *int
	RPE        *int
}

type ImplementationInput struct {
	ExerciseID primitive.ObjectID
	OrderIndex int
	Sets       []SetInput
}

type TrainingInput struct {
	DateTime        time.Time
	Duration        *int
	Notes           *string
	Status          string // defaults to planned
	Implementations []ImplementationInput
}

// TrainingUpdateInput is a partial update; nil fields stay untouched and a
// non-nil Implementations replaces the whole collection.
type TrainingUpdateInput struct {
	DateTime        *time.Time
	Duration        *int
	Notes           *string
	Status          *string
	Implementations *[]ImplementationInput
}

func buildImplementations(inputs []ImplementationInput) ([]domain.Implementation, error) {
	impls := make([]domain.Implementation, 0, len(inputs))
	for i, in := range inputs {
		if in.ExerciseID.IsZero() {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("implementations[%d].exercise_id", i), Reason: "is required"}
		}
		sets := make([]domain.Set, 0, len(in.Sets))
		for _, s := range in.Sets {
			set, err := domain.NewSet(s.OrderIndex, s.Weight, s.Reps, s.RestTime, s.Duration, s.RPE)
			if err != nil {
				return nil, err
			}
			sets = append(sets, set)
		}
		impls = append(impls, domain.Implementation{
			ExerciseID: in.ExerciseID,
			OrderIndex: in.OrderIndex,
			Sets:       sets,
		})
	}
	return impls, nil
}

func (in TrainingUpdateInput) toUpdate() (domain.TrainingUpdate, error) {
	update := domain.TrainingUpdate{
		DateTime: in.DateTime,
		Notes:    in.Notes,
	}
	if in.Duration != nil {
		d, err := domain.NewDuration(*in.Duration)
		if err != nil {
			return domain.TrainingUpdate{}, err
		}
		update.Duration = &d
	}
	if in.Status != nil {
		status, err := domain.ParseTrainingStatus(*in.Status)
		if err != nil {
			return domain.TrainingUpdate{}, err
		}
		update.Status = &status
	}
	if in.Implementations != nil {
		impls, err := buildImplementations(*in.Implementations)
		if err != nil {
			return domain.TrainingUpdate{}, err
		}
		update.Implementations = &impls
	}
	return update, nil
}

func exerciseIDs(impls []domain.Implementation) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(impls))
	ids := make([]primitive.ObjectID, 0, len(impls))
	for _, impl := range impls {
		if _, ok := seen[impl.ExerciseID]; ok {
			continue
		}
		seen[impl.ExerciseID] = struct{}{}
		ids = append(ids, impl.ExerciseID)
	}
	return ids
}

func trainingsExerciseIDs(trainings []domain.Training) []primitive.ObjectID {
	var all []domain.Implementation
	for _, t := range trainings {
		all = append(all, t.Implementations...)
	}
	return exerciseIDs(all)
}
