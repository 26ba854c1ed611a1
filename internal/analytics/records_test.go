package analytics_test

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExercisePR(t *testing.T) {
	bench := primitive.NewObjectID()
	d1 := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 3)

	first := training(d1, domain.TrainingStatusCompleted, impl(bench, sets(t, setSpec{90, 5}, setSpec{90, 3})))
	second := training(d2, domain.TrainingStatusCompleted, impl(bench, sets(t, setSpec{90, 8})))
	planned := training(d2, domain.TrainingStatusPlanned, impl(bench, sets(t, setSpec{150, 1})))

	pr := analytics.ExercisePR([]domain.Training{first, second, planned}, bench)
	require.NotNil(t, pr)
	assert.Equal(t, 90.0, pr.Weight)
	assert.Equal(t, 5, pr.Reps, "ties keep the first set found")
	assert.Equal(t, first.ID, pr.TrainingID)
	assert.Equal(t, d1, pr.Date)

	assert.Nil(t, analytics.ExercisePR([]domain.Training{planned}, bench))
	assert.Nil(t, analytics.ExercisePR([]domain.Training{first}, primitive.NewObjectID()))
}

func TestAllPRs(t *testing.T) {
	bench := primitive.NewObjectID()
	squat := primitive.NewObjectID()
	row := primitive.NewObjectID()
	d1 := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 2)

	trainings := []domain.Training{
		training(d1, domain.TrainingStatusCompleted,
			impl(bench, sets(t, setSpec{80, 5})),
			impl(row, sets(t, setSpec{60, 10})),
		),
		training(d2, domain.TrainingStatusCompleted,
			impl(bench, sets(t, setSpec{90, 3})),
			impl(squat, sets(t, setSpec{140, 3})),
		),
	}

	prs := analytics.AllPRs(trainings)
	require.Len(t, prs, 3)
	assert.Equal(t, squat, prs[0].ExerciseID)
	assert.Equal(t, 140.0, prs[0].Weight)
	assert.Equal(t, bench, prs[1].ExerciseID)
	assert.Equal(t, 90.0, prs[1].Weight)
	assert.Equal(t, trainings[1].ID, prs[1].TrainingID)
	assert.Equal(t, row, prs[2].ExerciseID)

	assert.Empty(t, analytics.AllPRs(nil))
}
