// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         *primitive.ObjectID  `bson:"userId,omitempty" json:"userId,omitempty"` // nil for system exercises
	Name           string               `bson:"name" json:"name"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	IsCustom       bool                 `bson:"isCustom" json:"isCustom"`
	MuscleGroupIDs []primitive.ObjectID `bson:"muscleGroupIds" json:"muscleGroupIds"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether userID can use the exercise.
func (e *Exercise) VisibleTo(userID primitive.ObjectID) bool {
	return e.UserID == nil || *e.UserID == userID
}
