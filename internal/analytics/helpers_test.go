package analytics_test

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type setSpec struct {
	weight float64
	reps   int
}

func sets(t *testing.T, specs ...setSpec) []domain.Set {
	t.Helper()
	out := make([]domain.Set, 0, len(specs))
	for i, s := range specs {
		set, err := domain.NewSet(i, s.weight, s.reps, nil, nil, nil)
		require.NoError(t, err)
		out = append(out, set)
	}
	return out
}

func training(at time.Time, status domain.TrainingStatus, impls ...domain.Implementation) domain.Training {
	return domain.Training{
		ID:              primitive.NewObjectID(),
		UserID:          primitive.NewObjectID(),
		DateTime:        at,
		Status:          status,
		Implementations: impls,
	}
}

func impl(exerciseID primitive.ObjectID, s []domain.Set) domain.Implementation {
	return domain.Implementation{ExerciseID: exerciseID, Sets: s}
}
