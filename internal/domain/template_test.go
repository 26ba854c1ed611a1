package domain_test

import (
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(v float64) *float64 { return &v }

func TestTrainingTemplate_Materialize(t *testing.T) {
	exerciseID := primitive.NewObjectID()
	tpl := &domain.TrainingTemplate{
		ID:   primitive.NewObjectID(),
		Name: "Push day",
		Implementations: []domain.ImplementationTemplate{
			{
				ExerciseID: exerciseID,
				OrderIndex: 3,
				Sets: []domain.SetTemplate{
					{OrderIndex: 0},
					{OrderIndex: 1, Weight: floatPtr(80), Reps: intPtr(8)},
				},
			},
		},
	}
	userID := primitive.NewObjectID()
	at := time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)
	now := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)

	tr, err := tpl.Materialize(userID, at, now)
	require.NoError(t, err)

	assert.Equal(t, userID, tr.UserID)
	assert.Equal(t, at, tr.DateTime)
	assert.Equal(t, domain.TrainingStatusPlanned, tr.Status)
	assert.Nil(t, tr.Duration)
	assert.Nil(t, tr.Notes)
	require.NotNil(t, tr.TemplateID)
	assert.Equal(t, tpl.ID, *tr.TemplateID)
	assert.Equal(t, now, tr.CreatedAt)

	require.Len(t, tr.Implementations, 1)
	impl := tr.Implementations[0]
	assert.Equal(t, exerciseID, impl.ExerciseID)
	assert.Equal(t, 3, impl.OrderIndex)
	require.Len(t, impl.Sets, 2)

	placeholder := impl.Sets[0]
	assert.Equal(t, 0.0, placeholder.Weight.Value())
	assert.Equal(t, 1, placeholder.Reps.Value())
	assert.Nil(t, placeholder.RestTime)
	assert.Nil(t, placeholder.Duration)
	assert.Nil(t, placeholder.RPE)

	assert.Equal(t, 80.0, impl.Sets[1].Weight.Value())
	assert.Equal(t, 8, impl.Sets[1].Reps.Value())
	assert.Equal(t, 1, impl.Sets[1].OrderIndex)
}

// Zero reps are treated as absent and materialize as a single rep.
func TestTrainingTemplate_Materialize_ZeroRepsBecomesOne(t *testing.T) {
	tpl := &domain.TrainingTemplate{
		ID:   primitive.NewObjectID(),
		Name: "zero",
		Implementations: []domain.ImplementationTemplate{
			{ExerciseID: primitive.NewObjectID(), Sets: []domain.SetTemplate{{Reps: intPtr(0), Weight: floatPtr(0)}}},
		},
	}

	tr, err := tpl.Materialize(primitive.NewObjectID(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Implementations[0].Sets[0].Reps.Value())
	assert.Equal(t, 0.0, tr.Implementations[0].Sets[0].Weight.Value())
}

func TestTrainingTemplate_Materialize_NegativePlaceholderFailsWhole(t *testing.T) {
	tpl := &domain.TrainingTemplate{
		ID:   primitive.NewObjectID(),
		Name: "broken",
		Implementations: []domain.ImplementationTemplate{
			{ExerciseID: primitive.NewObjectID(), Sets: []domain.SetTemplate{{Reps: intPtr(5)}}},
			{ExerciseID: primitive.NewObjectID(), Sets: []domain.SetTemplate{{Reps: intPtr(-2)}}},
		},
	}

	tr, err := tpl.Materialize(primitive.NewObjectID(), time.Now(), time.Now())
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, tpl.Validate(), domain.ErrValidation)
}

func TestTrainingTemplate_VisibleTo(t *testing.T) {
	owner := primitive.NewObjectID()
	system := &domain.TrainingTemplate{}
	own := &domain.TrainingTemplate{UserID: &owner}

	assert.True(t, system.IsSystem())
	assert.True(t, system.VisibleTo(primitive.NewObjectID()))
	assert.True(t, own.VisibleTo(owner))
	assert.False(t, own.VisibleTo(primitive.NewObjectID()))
}
