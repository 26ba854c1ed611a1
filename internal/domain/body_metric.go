package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxBodyWeight = 500.0 // kg
	maxBodyHeight = 300.0 // cm
)

// UserBodyMetric is a dated weight and/or height observation.
type UserBodyMetric struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Weight    *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Height    *float64           `bson:"height,omitempty" json:"height,omitempty"`
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewUserBodyMetric requires at least one of weight or height.
func NewUserBodyMetric(userID primitive.ObjectID, weight, height *float64, date, now time.Time) (*UserBodyMetric, error) {
	if weight == nil && height == nil {
		return nil, newValidationError("body_metric", "weight or height is required")
	}
	if weight != nil && (*weight < 0 || *weight > maxBodyWeight) {
		return nil, newValidationError("weight", "must be between 0 and %v, got %v", maxBodyWeight, *weight)
	}
	if height != nil && (*height < 0 || *height > maxBodyHeight) {
		return nil, newValidationError("height", "must be between 0 and %v, got %v", maxBodyHeight, *height)
	}
	return &UserBodyMetric{
		UserID:    userID,
		Weight:    weight,
		Height:    height,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
