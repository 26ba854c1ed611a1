package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/tracing"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowService manages follow requests. CanView is the gate every read of
// another user's trainings or analytics goes through.
type FollowService interface {
	RequestFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (*domain.Follow, error)
	Approve(ctx context.Context, userID, followerID primitive.ObjectID) (*domain.Follow, error)
	Reject(ctx context.Context, userID, followerID primitive.ObjectID) (*domain.Follow, error)
	Unfollow(ctx context.Context, followerID, followingID primitive.ObjectID) error
	ListFollowers(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error)
	ListFollowing(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error)
	CanView(ctx context.Context, viewerID, ownerID primitive.ObjectID) (bool, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	now        func() time.Time
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
		now:        utcNow,
	}
}

func (s *followService) RequestFollow(ctx context.Context, followerID, followingID primitive.ObjectID) (follow *domain.Follow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "followService.requestFollow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.followRepo.Get(ctx, followerID, followingID)
	switch {
	case err == nil:
		if existing.Status != domain.FollowStatusRejected {
			return nil, ErrFollowExists
		}
		// a rejected request may be sent again
		if err := existing.TransitionTo(domain.FollowStatusPending, s.now()); err != nil {
			return nil, err
		}
		if err := s.followRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("resend follow request: %w", err)
		}
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	now := s.now()
	follow = &domain.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      domain.FollowStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.followRepo.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFollowExists
		}
		return nil, fmt.Errorf("create follow request: %w", err)
	}

	log.WithFields(log.Fields{
		"follower":  followerID.Hex(),
		"following": followingID.Hex(),
	}).Debug("follow requested")
	return follow, nil
}

func (s *followService) Approve(ctx context.Context, userID, followerID primitive.ObjectID) (*domain.Follow, error) {
	return s.answer(ctx, userID, followerID, domain.FollowStatusApproved)
}

func (s *followService) Reject(ctx context.Context, userID, followerID primitive.ObjectID) (*domain.Follow, error) {
	return s.answer(ctx, userID, followerID, domain.FollowStatusRejected)
}

// answer moves the request followerID sent to userID into next.
func (s *followService) answer(ctx context.Context, userID, followerID primitive.ObjectID, next domain.FollowStatus) (*domain.Follow, error) {
	follow, err := s.followRepo.Get(ctx, followerID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFollowNotFound
		}
		return nil, err
	}
	if err := follow.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}
	if err := s.followRepo.Update(ctx, follow); err != nil {
		return nil, fmt.Errorf("update follow request: %w", err)
	}
	return follow, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFollowNotFound
		}
		return err
	}
	return nil
}

func (s *followService) ListFollowers(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return s.followRepo.ListFollowers(ctx, userID, status)
}

func (s *followService) ListFollowing(ctx context.Context, userID primitive.ObjectID, status *domain.FollowStatus) ([]domain.Follow, error) {
	return s.followRepo.ListFollowing(ctx, userID, status)
}

// CanView reports whether viewerID may read ownerID's data: the owner always
// can, anybody else needs an approved follow.
func (s *followService) CanView(ctx context.Context, viewerID, ownerID primitive.ObjectID) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}
	follow, err := s.followRepo.Get(ctx, viewerID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return follow.IsApproved(), nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
