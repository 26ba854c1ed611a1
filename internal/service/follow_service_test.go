package service

import (
	"context"
	"testing"

	"alcyxob/workout-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFollowService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.newUser(t), f.newUser(t)

	follow, err := f.follows.RequestFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowStatusPending, follow.Status)

	_, err = f.follows.RequestFollow(ctx, alice, bob)
	assert.ErrorIs(t, err, ErrFollowExists)

	canView, err := f.follows.CanView(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, canView)

	rejected, err := f.follows.Reject(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowStatusRejected, rejected.Status)

	// rejected requests can be resent
	resent, err := f.follows.RequestFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.FollowStatusPending, resent.Status)

	approved, err := f.follows.Approve(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())

	canView, err = f.follows.CanView(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, canView)

	// the relation is one way
	canView, err = f.follows.CanView(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, canView)

	// approved follows cannot be rejected afterwards
	_, err = f.follows.Reject(ctx, bob, alice)
	assert.ErrorIs(t, err, domain.ErrValidation)

	approvedStatus := domain.FollowStatusApproved
	followers, err := f.follows.ListFollowers(ctx, bob, &approvedStatus)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alice, followers[0].FollowerID)

	following, err := f.follows.ListFollowing(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, following, 1)

	require.NoError(t, f.follows.Unfollow(ctx, alice, bob))
	canView, err = f.follows.CanView(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, canView)
	assert.ErrorIs(t, f.follows.Unfollow(ctx, alice, bob), ErrFollowNotFound)
}

func TestFollowService_RequestFollow_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.newUser(t)

	_, err := f.follows.RequestFollow(ctx, alice, alice)
	assert.ErrorIs(t, err, ErrSelfFollow)

	_, err = f.follows.RequestFollow(ctx, alice, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.follows.Approve(ctx, alice, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrFollowNotFound)
}

func TestFollowService_OwnerCanAlwaysView(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t)

	canView, err := f.follows.CanView(context.Background(), alice, alice)
	require.NoError(t, err)
	assert.True(t, canView)
}
