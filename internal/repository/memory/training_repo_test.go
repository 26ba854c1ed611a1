package memory_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTraining(t *testing.T, userID, exerciseID primitive.ObjectID, at time.Time, status domain.TrainingStatus, weight float64) *domain.Training {
	t.Helper()
	set, err := domain.NewSet(0, weight, 5, nil, nil, nil)
	require.NoError(t, err)
	return &domain.Training{
		UserID:   userID,
		DateTime: at,
		Status:   status,
		Implementations: []domain.Implementation{
			{ExerciseID: exerciseID, Sets: []domain.Set{set}},
		},
	}
}

func TestTrainingRepo_StoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrainingRepository()
	tr := newTraining(t, primitive.NewObjectID(), primitive.NewObjectID(), time.Now(), domain.TrainingStatusPlanned, 50)

	id, err := repo.Create(ctx, tr)
	require.NoError(t, err)
	assert.False(t, tr.Implementations[0].ID.IsZero())

	tr.Implementations = nil
	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Implementations, 1)

	_, err = repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTrainingRepo_ListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrainingRepository()
	user := primitive.NewObjectID()
	ex := primitive.NewObjectID()
	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	for i, status := range []domain.TrainingStatus{
		domain.TrainingStatusCompleted,
		domain.TrainingStatusPlanned,
		domain.TrainingStatusCompleted,
	} {
		_, err := repo.Create(ctx, newTraining(t, user, ex, base.AddDate(0, 0, i), status, 10))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newTraining(t, primitive.NewObjectID(), ex, base, domain.TrainingStatusCompleted, 10))
	require.NoError(t, err)

	all, err := repo.List(ctx, user, repository.TrainingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].DateTime.After(all[1].DateTime))

	completed := domain.TrainingStatusCompleted
	from := base.AddDate(0, 0, 1)
	filtered, err := repo.List(ctx, user, repository.TrainingFilter{From: &from, Status: &completed})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, base.AddDate(0, 0, 2), filtered[0].DateTime)
}

func TestTrainingRepo_GetLastImplementation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrainingRepository()
	user := primitive.NewObjectID()
	ex := primitive.NewObjectID()
	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newTraining(t, user, ex, base, domain.TrainingStatusCompleted, 60))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTraining(t, user, ex, base.AddDate(0, 0, 5), domain.TrainingStatusCompleted, 70))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTraining(t, user, primitive.NewObjectID(), base.AddDate(0, 0, 9), domain.TrainingStatusCompleted, 99))
	require.NoError(t, err)

	impl, err := repo.GetLastImplementation(ctx, user, ex)
	require.NoError(t, err)
	assert.Equal(t, 70.0, impl.Sets[0].Weight.Value())

	_, err = repo.GetLastImplementation(ctx, primitive.NewObjectID(), ex)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainingRepo_DeleteRequiresOwner(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrainingRepository()
	user := primitive.NewObjectID()
	id, err := repo.Create(ctx, newTraining(t, user, primitive.NewObjectID(), time.Now(), domain.TrainingStatusPlanned, 10))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, id, primitive.NewObjectID()), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, id, user))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainingRepo_ShareTokenSurvivesStaleUpdate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTrainingRepository()
	tr := newTraining(t, primitive.NewObjectID(), primitive.NewObjectID(), time.Now(), domain.TrainingStatusPlanned, 50)
	id, err := repo.Create(ctx, tr)
	require.NoError(t, err)

	stale, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	stored, err := repo.SetShareTokenIfAbsent(ctx, id, "first", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "first", stored)

	stored, err = repo.SetShareTokenIfAbsent(ctx, id, "second", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "first", stored)

	notes := "stale write"
	stale.Notes = &notes
	require.NoError(t, repo.Update(ctx, stale))

	shared, err := repo.GetByShareToken(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "stale write", *shared.Notes)

	require.NoError(t, repo.ClearShareToken(ctx, id, time.Now()))
	_, err = repo.GetByShareToken(ctx, "first")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.SetShareTokenIfAbsent(ctx, primitive.NewObjectID(), "x", time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.ClearShareToken(ctx, primitive.NewObjectID(), time.Now()), repository.ErrNotFound)
}
