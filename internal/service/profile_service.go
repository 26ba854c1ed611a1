package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/tracing"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BodyMetricInput struct {
	Weight *float64
	Height *float64
	Date   *time.Time // defaults to today
}

type ProfileUpdateInput struct {
	Username *string
	Email    *string
}

type ProfileService interface {
	AddBodyMetric(ctx context.Context, userID primitive.ObjectID, input BodyMetricInput) (*domain.UserBodyMetric, error)
	ListBodyMetrics(ctx context.Context, viewerID, ownerID primitive.ObjectID, from, to *time.Time) ([]domain.UserBodyMetric, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileUpdateInput) (*domain.User, error)
}

type profileService struct {
	userRepo   repository.UserRepository
	metricRepo repository.BodyMetricRepository
	tx         repository.Transactor
	follows    FollowService
	now        func() time.Time
}

func NewProfileService(
	userRepo repository.UserRepository,
	metricRepo repository.BodyMetricRepository,
	tx repository.Transactor,
	follows FollowService,
) ProfileService {
	return &profileService{
		userRepo:   userRepo,
		metricRepo: metricRepo,
		tx:         tx,
		follows:    follows,
		now:        utcNow,
	}
}

// AddBodyMetric records a measurement and mirrors it onto the user's cached
// weight and height. Both writes commit together.
func (s *profileService) AddBodyMetric(ctx context.Context, userID primitive.ObjectID, input BodyMetricInput) (metric *domain.UserBodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "profileService.addBodyMetric")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.now()
	date := now
	if input.Date != nil {
		date = *input.Date
	}
	metric, err = domain.NewUserBodyMetric(userID, input.Weight, input.Height, date, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if _, err := s.metricRepo.Create(ctx, metric); err != nil {
			return fmt.Errorf("create body metric: %w", err)
		}
		user.ApplyBodyMetric(metric)
		return s.userRepo.UpdateBodyCache(ctx, userID, user.Weight, user.Height)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user": userID.Hex(),
		"date": metric.Date.Format(time.DateOnly),
	}).Debug("body metric recorded")
	return metric, nil
}

func (s *profileService) ListBodyMetrics(ctx context.Context, viewerID, ownerID primitive.ObjectID, from, to *time.Time) ([]domain.UserBodyMetric, error) {
	ok, err := s.follows.CanView(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return s.metricRepo.ListByUser(ctx, ownerID, from, to)
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes only the provided fields.
func (s *profileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !strings.Contains(email, "@") {
			return nil, &domain.ValidationError{Field: "email", Reason: "is not a valid address"}
		}
		if email != user.Email {
			owner, err := s.userRepo.GetByEmail(ctx, email)
			switch {
			case err == nil && owner.ID != userID:
				return nil, &domain.ValidationError{Field: "email", Reason: "is already taken"}
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return nil, err
			}
		}
		user.Email = email
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &domain.ValidationError{Field: "email", Reason: "is already taken"}
		}
		return nil, err
	}
	return user, nil
}
