package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTrainingService_CreateTraining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, userID, completedInput(fixedNow, squat,
		SetInput{OrderIndex: 0, Weight: 100, Reps: 5, RestTime: intPtr(120)},
		SetInput{OrderIndex: 1, Weight: 105, Reps: 3, RPE: intPtr(9)},
	))
	require.NoError(t, err)
	assert.Equal(t, domain.TrainingStatusCompleted, training.Status)
	require.Len(t, training.Implementations, 1)
	impl := training.Implementations[0]
	assert.Equal(t, training.ID, impl.TrainingID)
	require.Len(t, impl.Sets, 2)
	assert.Equal(t, impl.ID, impl.Sets[1].ImplementationID)
	assert.Equal(t, 9, impl.Sets[1].RPE.Value())

	stored, err := f.trainingsDB.GetByID(ctx, training.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Implementations[0].Sets, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterTrainingWrites.WithLabelValues("create")))
}

func TestTrainingService_CreateTraining_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	squat := f.newExercise(t)

	tests := []struct {
		name  string
		input TrainingInput
	}{
		{"zero reps", completedInput(fixedNow, squat, SetInput{Weight: 50, Reps: 0})},
		{"negative weight", completedInput(fixedNow, squat, SetInput{Weight: -1, Reps: 5})},
		{"rpe out of range", completedInput(fixedNow, squat, SetInput{Weight: 50, Reps: 5, RPE: intPtr(11)})},
		{"unknown status", TrainingInput{DateTime: fixedNow, Status: "abandoned"}},
		{"negative duration", TrainingInput{DateTime: fixedNow, Duration: intPtr(-5)}},
		{"missing date", TrainingInput{}},
		{"unknown exercise", completedInput(fixedNow, primitive.NewObjectID(), SetInput{Weight: 50, Reps: 5})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.trainings.CreateTraining(ctx, userID, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	all, err := f.trainingsDB.List(ctx, userID, repository.TrainingFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "failed creates must not leave partial trainings")
}

func TestTrainingService_CustomExerciseOfOtherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := f.newUser(t), f.newUser(t)

	custom, err := f.exercises.CreateExercise(ctx, owner, "Zercher squat", "", nil)
	require.NoError(t, err)

	_, err = f.trainings.CreateTraining(ctx, other, completedInput(fixedNow, custom.ID, SetInput{Weight: 60, Reps: 5}))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, custom.ID, SetInput{Weight: 60, Reps: 5}))
	assert.NoError(t, err)
}

func TestTrainingService_GetTraining_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, follower, stranger := f.newUser(t), f.newUser(t), f.newUser(t)
	squat := f.newExercise(t)
	f.approveFollow(t, follower, owner)

	training, err := f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, squat, SetInput{Weight: 80, Reps: 5}))
	require.NoError(t, err)

	got, err := f.trainings.GetTraining(ctx, owner, training.ID)
	require.NoError(t, err)
	assert.Equal(t, training.ID, got.ID)

	_, err = f.trainings.GetTraining(ctx, follower, training.ID)
	assert.NoError(t, err)

	// a stranger cannot tell a private training from a missing one
	_, err = f.trainings.GetTraining(ctx, stranger, training.ID)
	assert.ErrorIs(t, err, ErrTrainingNotFound)
	_, err = f.trainings.GetTraining(ctx, stranger, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTrainingNotFound)

	_, err = f.trainings.ListTrainings(ctx, stranger, owner, repository.TrainingFilter{})
	assert.ErrorIs(t, err, ErrAccessDenied)
	list, err := f.trainings.ListTrainings(ctx, follower, owner, repository.TrainingFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTrainingService_PendingFollowDoesNotGrantAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, follower := f.newUser(t), f.newUser(t)

	_, err := f.follows.RequestFollow(ctx, follower, owner)
	require.NoError(t, err)

	_, err = f.trainings.ListTrainings(ctx, follower, owner, repository.TrainingFilter{})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestTrainingService_UpdateTraining_ReplacesImplementations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	squat, bench := f.newExercise(t), f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, userID, completedInput(fixedNow, squat,
		SetInput{OrderIndex: 0, Weight: 100, Reps: 5},
		SetInput{OrderIndex: 1, Weight: 100, Reps: 5},
	))
	require.NoError(t, err)
	oldImplID := training.Implementations[0].ID

	notes := "felt strong"
	replacement := []ImplementationInput{{
		ExerciseID: bench,
		Sets:       []SetInput{{Weight: 70, Reps: 8}},
	}}
	updated, err := f.trainings.UpdateTraining(ctx, userID, training.ID, TrainingUpdateInput{
		Notes:           &notes,
		Implementations: &replacement,
	})
	require.NoError(t, err)
	require.Len(t, updated.Implementations, 1)
	assert.Equal(t, bench, updated.Implementations[0].ExerciseID)
	assert.NotEqual(t, oldImplID, updated.Implementations[0].ID)
	assert.Equal(t, "felt strong", *updated.Notes)

	// fields left nil stay untouched, implementations included
	status := string(domain.TrainingStatusSkipped)
	updated, err = f.trainings.UpdateTraining(ctx, userID, training.ID, TrainingUpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TrainingStatusSkipped, updated.Status)
	assert.Len(t, updated.Implementations, 1)

	empty := []ImplementationInput{}
	updated, err = f.trainings.UpdateTraining(ctx, userID, training.ID, TrainingUpdateInput{Implementations: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Implementations)

	stored, err := f.trainingsDB.GetByID(ctx, training.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Implementations)
}

func TestTrainingService_UpdateTraining_InvalidSetLeavesStoredUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, userID, completedInput(fixedNow, squat, SetInput{Weight: 100, Reps: 5}))
	require.NoError(t, err)

	bad := []ImplementationInput{{
		ExerciseID: squat,
		Sets:       []SetInput{{Weight: 100, Reps: 5}, {Weight: 100, Reps: -2}},
	}}
	_, err = f.trainings.UpdateTraining(ctx, userID, training.ID, TrainingUpdateInput{Implementations: &bad})
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.trainingsDB.GetByID(ctx, training.ID)
	require.NoError(t, err)
	require.Len(t, stored.Implementations, 1)
	assert.Len(t, stored.Implementations[0].Sets, 1)
}

func TestTrainingService_OwnershipChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := f.newUser(t), f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, squat, SetInput{Weight: 100, Reps: 5}))
	require.NoError(t, err)

	notes := "hijacked"
	_, err = f.trainings.UpdateTraining(ctx, other, training.ID, TrainingUpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, ErrTrainingAccessDenied)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	assert.ErrorIs(t, f.trainings.DeleteTraining(ctx, other, training.ID), ErrTrainingAccessDenied)
	_, err = f.trainings.GenerateShareToken(ctx, other, training.ID)
	assert.ErrorIs(t, err, ErrTrainingAccessDenied)

	_, err = f.trainings.UpdateTraining(ctx, owner, primitive.NewObjectID(), TrainingUpdateInput{Notes: &notes})
	assert.ErrorIs(t, err, ErrTrainingNotFound)

	require.NoError(t, f.trainings.DeleteTraining(ctx, owner, training.ID))
	_, err = f.trainingsDB.GetByID(ctx, training.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainingService_ShareToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, squat, SetInput{Weight: 100, Reps: 5}))
	require.NoError(t, err)

	token, err := f.trainings.GenerateShareToken(ctx, owner, training.ID)
	require.NoError(t, err)
	assert.Len(t, token, 43) // 32 bytes, unpadded base64url
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	again, err := f.trainings.GenerateShareToken(ctx, owner, training.ID)
	require.NoError(t, err)
	assert.Equal(t, token, again, "existing token must not be rotated")

	shared, err := f.trainings.GetSharedTraining(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, training.ID, shared.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSharedViews))

	require.NoError(t, f.trainings.RemoveShareToken(ctx, owner, training.ID))
	_, err = f.trainings.GetSharedTraining(ctx, token)
	assert.ErrorIs(t, err, ErrShareNotFound)
	_, err = f.trainings.GetSharedTraining(ctx, "")
	assert.ErrorIs(t, err, ErrShareNotFound)

	rotated, err := f.trainings.GenerateShareToken(ctx, owner, training.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, rotated)
}

// lockstepTrainingRepo holds every GetByID until all expected callers have
// loaded the aggregate, so their writes race on the same stale copy.
type lockstepTrainingRepo struct {
	repository.TrainingRepository
	loaded sync.WaitGroup
}

func (r *lockstepTrainingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error) {
	t, err := r.TrainingRepository.GetByID(ctx, id)
	r.loaded.Done()
	r.loaded.Wait()
	return t, err
}

func TestTrainingService_ConcurrentShareReturnsOneToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, squat, SetInput{Weight: 100, Reps: 5}))
	require.NoError(t, err)

	lockstep := &lockstepTrainingRepo{TrainingRepository: f.trainingsDB}
	lockstep.loaded.Add(2)
	f.trainings.trainingRepo = lockstep

	var (
		wg     sync.WaitGroup
		tokens [2]string
		errs   [2]error
	)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = f.trainings.GenerateShareToken(ctx, owner, training.ID)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, tokens[0], tokens[1])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterTrainingWrites.WithLabelValues("share")))

	shared, err := f.trainings.GetSharedTraining(ctx, tokens[0])
	require.NoError(t, err)
	assert.Equal(t, training.ID, shared.ID)
}

func TestTrainingService_UpdateDoesNotDropConcurrentShareToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newUser(t)
	squat := f.newExercise(t)

	training, err := f.trainings.CreateTraining(ctx, owner, completedInput(fixedNow, squat, SetInput{Weight: 100, Reps: 5}))
	require.NoError(t, err)

	lockstep := &lockstepTrainingRepo{TrainingRepository: f.trainingsDB}
	lockstep.loaded.Add(2)
	f.trainings.trainingRepo = lockstep

	var (
		wg        sync.WaitGroup
		token     string
		shareErr  error
		updateErr error
	)
	notes := "deload week"
	wg.Add(2)
	go func() {
		defer wg.Done()
		token, shareErr = f.trainings.GenerateShareToken(ctx, owner, training.ID)
	}()
	go func() {
		defer wg.Done()
		_, updateErr = f.trainings.UpdateTraining(ctx, owner, training.ID, TrainingUpdateInput{Notes: &notes})
	}()
	wg.Wait()

	require.NoError(t, shareErr)
	require.NoError(t, updateErr)

	stored, err := f.trainingsDB.GetByID(ctx, training.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ShareToken)
	assert.Equal(t, token, *stored.ShareToken)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "deload week", *stored.Notes)
}

func TestTrainingService_CreateFromTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, other := f.newUser(t), f.newUser(t)
	squat := f.newExercise(t)

	tpl, err := f.templates.CreateTemplate(ctx, owner, TemplateInput{
		Name: "Leg day",
		Implementations: []ImplementationTemplateInput{{
			ExerciseID: squat,
			Sets: []SetTemplateInput{
				{OrderIndex: 0, Weight: floatPtr(100), Reps: intPtr(5)},
				{OrderIndex: 1},
			},
		}},
	})
	require.NoError(t, err)

	when := fixedNow.Add(24 * time.Hour)
	training, err := f.trainings.CreateFromTemplate(ctx, owner, tpl.ID, when)
	require.NoError(t, err)
	assert.Equal(t, domain.TrainingStatusPlanned, training.Status)
	require.NotNil(t, training.TemplateID)
	assert.Equal(t, tpl.ID, *training.TemplateID)
	assert.Equal(t, when, training.DateTime)
	sets := training.Implementations[0].Sets
	require.Len(t, sets, 2)
	assert.Equal(t, 100.0, sets[0].Weight.Value())
	assert.Equal(t, 0.0, sets[1].Weight.Value())
	assert.Equal(t, 1, sets[1].Reps.Value())

	_, err = f.trainingsDB.GetByID(ctx, training.ID)
	require.NoError(t, err)

	_, err = f.trainings.CreateFromTemplate(ctx, other, tpl.ID, when)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTrainingService_GetLastImplementation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.newUser(t)
	squat := f.newExercise(t)

	_, err := f.trainings.CreateTraining(ctx, userID, completedInput(fixedNow.AddDate(0, 0, -7), squat, SetInput{Weight: 90, Reps: 5}))
	require.NoError(t, err)
	_, err = f.trainings.CreateTraining(ctx, userID, completedInput(fixedNow, squat, SetInput{Weight: 95, Reps: 5}))
	require.NoError(t, err)

	impl, err := f.trainings.GetLastImplementation(ctx, userID, squat)
	require.NoError(t, err)
	assert.Equal(t, 95.0, impl.Sets[0].Weight.Value())

	never, err := f.trainings.GetLastImplementation(ctx, userID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, never)
}
