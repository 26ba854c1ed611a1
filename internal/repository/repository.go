package repository

import (
	"alcyxob/workout-tracker/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrDuplicate    = RepositoryError("duplicate")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Is makes ErrNotFound match domain.ErrNotFound.
func (e RepositoryError) Is(target error) bool {
	return e == ErrNotFound && target == domain.ErrNotFound
}

// TrainingFilter narrows a training listing. Zero values mean no bound.
type TrainingFilter struct {
	From   *time.Time
	To     *time.Time
	Status *domain.TrainingStatus
}

// Matches reports whether t passes the filter.
func (f TrainingFilter) Matches(t *domain.Training) bool {
	if f.From != nil && t.DateTime.Before(*f.From) {
		return false
	}
	if f.To != nil && t.DateTime.After(*f.To) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

// TrainingRepository stores Training aggregates. Every write covers the whole
// aggregate, implementations and sets included.
type TrainingRepository interface {
	Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Training, error)
	GetByShareToken(ctx context.Context, token string) (*domain.Training, error)
	// List returns the user's trainings, newest first.
	List(ctx context.Context, userID primitive.ObjectID, filter TrainingFilter) ([]domain.Training, error)
	// Update replaces the stored aggregate. The share token is left as stored;
	// only SetShareTokenIfAbsent and ClearShareToken change it.
	Update(ctx context.Context, training *domain.Training) error
	// SetShareTokenIfAbsent stores token unless the training already has one,
	// and returns the token stored afterwards.
	SetShareTokenIfAbsent(ctx context.Context, id primitive.ObjectID, token string, now time.Time) (string, error)
	ClearShareToken(ctx context.Context, id primitive.ObjectID, now time.Time) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	// GetLastImplementation returns the most recent implementation of an
	// exercise across the user's trainings.
	GetLastImplementation(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Implementation, error)
}

// TemplateRepository stores training templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.TrainingTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingTemplate, error)
	// ListVisible returns the user's own templates and the system ones.
	ListVisible(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingTemplate, error)
	Update(ctx context.Context, tpl *domain.TrainingTemplate) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	ListVisible(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error // Ensure user owns the exercise
}

type MuscleGroupRepository interface {
	Create(ctx context.Context, group *domain.MuscleGroup) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error)
	List(ctx context.Context) ([]domain.MuscleGroup, error)
}

// BodyMetricRepository stores dated body observations.
type BodyMetricRepository interface {
	Create(ctx context.Context, metric *domain.UserBodyMetric) (primitive.ObjectID, error)
	// ListByUser returns metrics oldest first, optionally bounded by date.
	ListByUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserBodyMetric, error)
	GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.UserBodyMetric, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// UpdateBodyCache overwrites the denormalized current weight and height.
	UpdateBodyCache(ctx context.Context, id primitive.ObjectID, weight, height *float64) error
}

// FollowRepository stores follow relationships between users.
type FollowRepository interface {
	Create(ctx context.Context, follow *domain.Follow) (primitive.ObjectID, error)
	Get(ctx context.Context, followerID, followingID primitive.ObjectID) (*domain.Follow, error)
	Update(ctx context.Context, follow *domain.Follow) error
	Delete(ctx context.Context, followerID, followingID primitive.ObjectID) error
	ListFollowers(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error)
	ListFollowing(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or rolls back together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
