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

type muscleGroupRepo struct {
	mu     sync.RWMutex
	groups map[primitive.ObjectID]domain.MuscleGroup
}

func NewMuscleGroupRepository() repository.MuscleGroupRepository {
	return &muscleGroupRepo{
		groups: make(map[primitive.ObjectID]domain.MuscleGroup),
	}
}

func (r *muscleGroupRepo) Create(_ context.Context, group *domain.MuscleGroup) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.groups {
		if g.Name == group.Name {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	group.CreatedAt = time.Now().UTC()
	r.groups[group.ID] = *group
	return group.ID, nil
}

func (r *muscleGroupRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *muscleGroupRepo) List(context.Context) ([]domain.MuscleGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]domain.MuscleGroup, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}
