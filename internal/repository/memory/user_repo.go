package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepo{
		users: make(map[primitive.ObjectID]domain.User),
	}
}

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) UpdateBodyCache(_ context.Context, id primitive.ObjectID, weight, height *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Weight = weight
	u.Height = height
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}
