package service

import (
	"fmt"

	"alcyxob/workout-tracker/internal/domain"
)

// Service errors wrap the domain sentinels, so callers can either match the
// exact error or its class (errors.Is(err, domain.ErrNotFound)).
var (
	ErrTrainingNotFound     = fmt.Errorf("training %w", domain.ErrNotFound)
	ErrTrainingAccessDenied = fmt.Errorf("training access: %w", domain.ErrPermissionDenied)
	ErrTemplateNotFound     = fmt.Errorf("template %w", domain.ErrNotFound)
	ErrTemplateAccessDenied = fmt.Errorf("template access: %w", domain.ErrPermissionDenied)
	ErrExerciseNotFound     = fmt.Errorf("exercise %w", domain.ErrNotFound)
	ErrExerciseAccessDenied = fmt.Errorf("exercise access: %w", domain.ErrPermissionDenied)
	ErrMuscleGroupExists    = fmt.Errorf("muscle group already exists: %w", domain.ErrValidation)
	ErrUserNotFound         = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrFollowNotFound       = fmt.Errorf("follow request %w", domain.ErrNotFound)
	ErrFollowExists         = fmt.Errorf("follow request already exists: %w", domain.ErrValidation)
	ErrSelfFollow           = fmt.Errorf("cannot follow yourself: %w", domain.ErrValidation)
	ErrAccessDenied         = fmt.Errorf("data of this user: %w", domain.ErrPermissionDenied)
	ErrShareNotFound        = fmt.Errorf("shared training %w", domain.ErrNotFound)
	ErrExportUnavailable    = fmt.Errorf("export storage is not configured")
)
