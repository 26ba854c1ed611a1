package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type exerciseRepo struct {
	mu        sync.RWMutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepo{
		exercises: make(map[primitive.ObjectID]domain.Exercise),
	}
}

func copyExercise(e domain.Exercise) domain.Exercise {
	e.MuscleGroupIDs = append([]primitive.ObjectID(nil), e.MuscleGroupIDs...)
	return e
}

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if exercise.ID.IsZero() {
		exercise.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = copyExercise(*exercise)
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = copyExercise(e)
	return &e, nil
}

func (r *exerciseRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exercises := make([]domain.Exercise, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			exercises = append(exercises, copyExercise(e))
		}
	}
	return exercises, nil
}

func (r *exerciseRepo) ListVisible(_ context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exercises := make([]domain.Exercise, 0)
	for _, e := range r.exercises {
		if e.VisibleTo(userID) {
			exercises = append(exercises, copyExercise(e))
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].Name < exercises[j].Name
	})
	return exercises, nil
}

func (r *exerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = copyExercise(*exercise)
	return nil
}

func (r *exerciseRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.exercises[id]
	if !ok || e.UserID == nil || *e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}
