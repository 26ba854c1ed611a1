package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MuscleGroup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
