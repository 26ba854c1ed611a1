package memory

import (
	"context"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type followKey struct {
	follower  primitive.ObjectID
	following primitive.ObjectID
}

type followRepo struct {
	mu      sync.RWMutex
	follows map[followKey]domain.Follow
}

func NewFollowRepository() repository.FollowRepository {
	return &followRepo{
		follows: make(map[followKey]domain.Follow),
	}
}

func (r *followRepo) Create(_ context.Context, follow *domain.Follow) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := followKey{follow.FollowerID, follow.FollowingID}
	if _, exists := r.follows[key]; exists {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	if follow.ID.IsZero() {
		follow.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	follow.CreatedAt = now
	follow.UpdatedAt = now
	r.follows[key] = *follow
	return follow.ID, nil
}

func (r *followRepo) Get(_ context.Context, followerID, followingID primitive.ObjectID) (*domain.Follow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.follows[followKey{followerID, followingID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r *followRepo) Update(_ context.Context, follow *domain.Follow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := followKey{follow.FollowerID, follow.FollowingID}
	if _, ok := r.follows[key]; !ok {
		return repository.ErrNotFound
	}
	r.follows[key] = *follow
	return nil
}

func (r *followRepo) Delete(_ context.Context, followerID, followingID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := followKey{followerID, followingID}
	if _, ok := r.follows[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.follows, key)
	return nil
}

func (r *followRepo) ListFollowers(_ context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return r.list(func(f domain.Follow) bool {
		return f.FollowingID == userID && (status == nil || f.Status == *status)
	}), nil
}

func (r *followRepo) ListFollowing(_ context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return r.list(func(f domain.Follow) bool {
		return f.FollowerID == userID && (status == nil || f.Status == *status)
	}), nil
}

func (r *followRepo) list(match func(domain.Follow) bool) []domain.Follow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	follows := make([]domain.Follow, 0)
	for _, f := range r.follows {
		if match(f) {
			follows = append(follows, f)
		}
	}
	return follows
}
