// Package memory keeps repositories in process memory. It backs tests and the
// "memory" database driver.
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

type trainingRepo struct {
	mu        sync.RWMutex
	trainings map[primitive.ObjectID]*domain.Training
}

func NewTrainingRepository() repository.TrainingRepository {
	return &trainingRepo{
		trainings: make(map[primitive.ObjectID]*domain.Training),
	}
}

func (r *trainingRepo) Create(_ context.Context, training *domain.Training) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if training.ID.IsZero() {
		training.ID = primitive.NewObjectID()
	}
	if _, exists := r.trainings[training.ID]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	if training.CreatedAt.IsZero() {
		training.CreatedAt = now
	}
	training.UpdatedAt = now
	training.AssignIDs()

	r.trainings[training.ID] = training.Clone()
	return training.ID, nil
}

func (r *trainingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Training, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trainings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *trainingRepo) GetByShareToken(_ context.Context, token string) (*domain.Training, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.trainings {
		if t.ShareToken != nil && *t.ShareToken == token {
			return t.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *trainingRepo) List(_ context.Context, userID primitive.ObjectID, filter repository.TrainingFilter) ([]domain.Training, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trainings := make([]domain.Training, 0)
	for _, t := range r.trainings {
		if t.UserID != userID || !filter.Matches(t) {
			continue
		}
		trainings = append(trainings, *t.Clone())
	}
	sort.Slice(trainings, func(i, j int) bool {
		return trainings[i].DateTime.After(trainings[j].DateTime)
	})
	return trainings, nil
}

func (r *trainingRepo) Update(_ context.Context, training *domain.Training) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.trainings[training.ID]
	if !ok {
		return repository.ErrNotFound
	}
	training.AssignIDs()
	replaced := training.Clone()
	replaced.ShareToken = stored.ShareToken
	r.trainings[training.ID] = replaced
	return nil
}

func (r *trainingRepo) SetShareTokenIfAbsent(_ context.Context, id primitive.ObjectID, token string, now time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trainings[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	if t.ShareToken != nil {
		return *t.ShareToken, nil
	}
	t.ShareToken = &token
	t.UpdatedAt = now
	return token, nil
}

func (r *trainingRepo) ClearShareToken(_ context.Context, id primitive.ObjectID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trainings[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.ShareToken = nil
	t.UpdatedAt = now
	return nil
}

func (r *trainingRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trainings[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.trainings, id)
	return nil
}

func (r *trainingRepo) GetLastImplementation(_ context.Context, userID, exerciseID primitive.ObjectID) (*domain.Implementation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		latest   *domain.Implementation
		latestAt time.Time
	)
	for _, t := range r.trainings {
		if t.UserID != userID || !t.DateTime.After(latestAt) {
			continue
		}
		for i := range t.Implementations {
			if t.Implementations[i].ExerciseID == exerciseID {
				impl := t.Implementations[i]
				impl.Sets = append([]domain.Set(nil), impl.Sets...)
				latest = &impl
				latestAt = t.DateTime
				break
			}
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return latest, nil
}
