package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// exerciseCache is the part of cache.MuscleGroupCache the exercise service
// needs to keep lookups fresh.
type exerciseCache interface {
	Invalidate(exerciseID primitive.ObjectID)
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, userID primitive.ObjectID, name, description string, muscleGroupIDs []primitive.ObjectID) (*domain.Exercise, error)
	GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, name, description string, muscleGroupIDs []primitive.ObjectID) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error

	CreateMuscleGroup(ctx context.Context, name string) (*domain.MuscleGroup, error)
	ListMuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error)
}

type exerciseService struct {
	exerciseRepo    repository.ExerciseRepository
	muscleGroupRepo repository.MuscleGroupRepository
	cache           exerciseCache
	now             func() time.Time
}

func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	muscleGroupRepo repository.MuscleGroupRepository,
	cache exerciseCache,
) ExerciseService {
	return &exerciseService{
		exerciseRepo:    exerciseRepo,
		muscleGroupRepo: muscleGroupRepo,
		cache:           cache,
		now:             utcNow,
	}
}

// CreateExercise adds a custom exercise owned by userID.
func (s *exerciseService) CreateExercise(ctx context.Context, userID primitive.ObjectID, name, description string, muscleGroupIDs []primitive.ObjectID) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if err := s.checkMuscleGroups(ctx, muscleGroupIDs); err != nil {
		return nil, err
	}

	owner := userID
	now := s.now()
	exercise := &domain.Exercise{
		UserID:         &owner,
		Name:           name,
		Description:    description,
		IsCustom:       true,
		MuscleGroupIDs: muscleGroupIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	return exercise, nil
}

func (s *exerciseService) GetExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if !exercise.VisibleTo(userID) {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

// ListExercises returns the system exercises plus the user's custom ones.
func (s *exerciseService) ListExercises(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	return s.exerciseRepo.ListVisible(ctx, userID)
}

func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, name, description string, muscleGroupIDs []primitive.ObjectID) (*domain.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	exercise, err := s.owned(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkMuscleGroups(ctx, muscleGroupIDs); err != nil {
		return nil, err
	}

	exercise.Name = name
	exercise.Description = description
	exercise.MuscleGroupIDs = muscleGroupIDs
	exercise.UpdatedAt = s.now()
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	s.cache.Invalidate(exerciseID)
	return exercise, nil
}

// DeleteExercise removes a custom exercise. Trainings that reference it keep
// the id; analytics treat it as an unknown exercise from then on.
func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	if _, err := s.owned(ctx, userID, exerciseID); err != nil {
		return err
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	s.cache.Invalidate(exerciseID)
	log.WithField("exercise", exerciseID.Hex()).Debug("custom exercise deleted")
	return nil
}

func (s *exerciseService) CreateMuscleGroup(ctx context.Context, name string) (*domain.MuscleGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	group := &domain.MuscleGroup{Name: name, CreatedAt: s.now()}
	if _, err := s.muscleGroupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrMuscleGroupExists
		}
		return nil, fmt.Errorf("create muscle group: %w", err)
	}
	return group, nil
}

func (s *exerciseService) ListMuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error) {
	return s.muscleGroupRepo.List(ctx)
}

func (s *exerciseService) owned(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.GetExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.UserID == nil {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

func (s *exerciseService) checkMuscleGroups(ctx context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		if _, err := s.muscleGroupRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &domain.ValidationError{Field: "muscle_group_ids", Reason: fmt.Sprintf("unknown muscle group %s", id.Hex())}
			}
			return err
		}
	}
	return nil
}
