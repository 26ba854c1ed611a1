package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a profile. Weight and Height mirror the most recent body metric.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"` // Should be unique
	Username  string             `bson:"username" json:"username"`
	Weight    *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Height    *float64           `bson:"height,omitempty" json:"height,omitempty"` // centimeters
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ApplyBodyMetric copies the measured values of m onto the cached profile
// fields. Values absent from m keep their previous value.
func (u *User) ApplyBodyMetric(m *UserBodyMetric) {
	if m.Weight != nil {
		w := *m.Weight
		u.Weight = &w
	}
	if m.Height != nil {
		h := *m.Height
		u.Height = &h
	}
}
