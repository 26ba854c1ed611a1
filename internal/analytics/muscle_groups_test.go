package analytics_test

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/analytics"
	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func lookupFrom(m map[primitive.ObjectID][]primitive.ObjectID) analytics.ExerciseLookup {
	return func(id primitive.ObjectID) ([]primitive.ObjectID, bool) {
		groups, ok := m[id]
		return groups, ok
	}
}

func TestMuscleGroupVolume(t *testing.T) {
	chest := primitive.NewObjectID()
	triceps := primitive.NewObjectID()
	bench := primitive.NewObjectID()
	plank := primitive.NewObjectID()
	unknown := primitive.NewObjectID()

	lookup := lookupFrom(map[primitive.ObjectID][]primitive.ObjectID{
		bench: {chest, triceps},
		plank: {},
	})
	at := time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)
	trainings := []domain.Training{
		training(at, domain.TrainingStatusCompleted,
			impl(bench, sets(t, setSpec{100, 5}, setSpec{50, 10})),
			impl(plank, sets(t, setSpec{10, 60})),
			impl(unknown, sets(t, setSpec{100, 100})),
		),
		training(at, domain.TrainingStatusPlanned, impl(bench, sets(t, setSpec{100, 100}))),
	}

	volumes := analytics.MuscleGroupVolume(trainings, lookup)
	assert.Equal(t, map[primitive.ObjectID]float64{chest: 500, triceps: 500}, volumes)
}

func TestMuscleGroupFrequency(t *testing.T) {
	chest := primitive.NewObjectID()
	triceps := primitive.NewObjectID()
	bench := primitive.NewObjectID()
	dips := primitive.NewObjectID()

	lookup := lookupFrom(map[primitive.ObjectID][]primitive.ObjectID{
		bench: {chest, triceps},
		dips:  {triceps},
	})
	d1 := time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 2)
	trainings := []domain.Training{
		training(d1, domain.TrainingStatusCompleted,
			impl(bench, sets(t, setSpec{100, 5})),
			impl(dips, sets(t, setSpec{0, 12})),
		),
		training(d1.Add(6*time.Hour), domain.TrainingStatusCompleted, impl(dips, sets(t, setSpec{0, 10}))),
		training(d2, domain.TrainingStatusCompleted, impl(dips, sets(t, setSpec{10, 8}))),
	}

	freq := analytics.MuscleGroupFrequency(trainings, lookup)
	assert.Equal(t, map[primitive.ObjectID]int{chest: 1, triceps: 2}, freq)
}

func TestSummarize(t *testing.T) {
	bench := primitive.NewObjectID()
	today := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	trainings := []domain.Training{
		training(today, domain.TrainingStatusCompleted, impl(bench, sets(t, setSpec{100, 5}))),
		training(today.AddDate(0, 0, -1), domain.TrainingStatusCompleted, impl(bench, sets(t, setSpec{50, 10}))),
		training(today, domain.TrainingStatusPlanned, impl(bench, sets(t, setSpec{500, 10}))),
	}

	s := analytics.Summarize(trainings, today)
	assert.Equal(t, analytics.Summary{
		CompletedTrainings: 2,
		TotalVolume:        1000,
		Streak:             2,
		PersonalRecords:    1,
		TrainingDays:       2,
	}, s)
}
