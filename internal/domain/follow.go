package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowStatus type for the follow request lifecycle
type FollowStatus string

const (
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusApproved FollowStatus = "approved"
	FollowStatusRejected FollowStatus = "rejected"
)

// Follow is a request by FollowerID to see FollowingID's data.
type Follow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FollowerID  primitive.ObjectID `bson:"followerId" json:"followerId"`
	FollowingID primitive.ObjectID `bson:"followingId" json:"followingId"`
	Status      FollowStatus       `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var followTransitions = map[FollowStatus][]FollowStatus{
	FollowStatusPending:  {FollowStatusApproved, FollowStatusRejected},
	FollowStatusRejected: {FollowStatusPending},
}

// TransitionTo moves the follow to next. Pending may become approved or
// rejected; a rejected request may be resent as pending.
func (f *Follow) TransitionTo(next FollowStatus, now time.Time) error {
	for _, allowed := range followTransitions[f.Status] {
		if allowed == next {
			f.Status = next
			f.UpdatedAt = now
			return nil
		}
	}
	return newValidationError("status", "cannot move follow from %s to %s", f.Status, next)
}

func (f *Follow) IsApproved() bool {
	return f.Status == FollowStatusApproved
}
