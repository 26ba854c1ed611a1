package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetTemplate holds optional placeholder values for a planned set.
type SetTemplate struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	Weight     *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Reps       *int               `bson:"reps,omitempty" json:"reps,omitempty"`
}

type ImplementationTemplate struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	Sets       []SetTemplate      `bson:"sets" json:"sets"`
}

// TrainingTemplate is a reusable routine. A nil UserID marks a system template
// visible to everyone.
type TrainingTemplate struct {
	ID              primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID      `bson:"userId,omitempty" json:"userId,omitempty"`
	Name            string                   `bson:"name" json:"name"`
	Description     string                   `bson:"description,omitempty" json:"description,omitempty"`
	Implementations []ImplementationTemplate `bson:"implementations" json:"implementations"`
	CreatedAt       time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                `bson:"updatedAt" json:"updatedAt"`
}

func (t *TrainingTemplate) IsSystem() bool {
	return t.UserID == nil
}

// VisibleTo reports whether userID may read the template.
func (t *TrainingTemplate) VisibleTo(userID primitive.ObjectID) bool {
	return t.UserID == nil || *t.UserID == userID
}

// Materialize stamps out a planned Training from the template.
//
// A missing weight becomes 0 and a missing rep count becomes 1. Zero counts as
// missing for both, so a template with reps=0 yields a one-rep set. Negative
// placeholders fail the whole call; nothing is returned partially built.
func (t *TrainingTemplate) Materialize(userID primitive.ObjectID, dateTime, now time.Time) (*Training, error) {
	templateID := t.ID
	training := &Training{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		TemplateID:      &templateID,
		DateTime:        dateTime.UTC(),
		Status:          TrainingStatusPlanned,
		Implementations: make([]Implementation, 0, len(t.Implementations)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, implTpl := range t.Implementations {
		impl := Implementation{
			ExerciseID: implTpl.ExerciseID,
			OrderIndex: implTpl.OrderIndex,
			Sets:       make([]Set, 0, len(implTpl.Sets)),
		}
		for _, setTpl := range implTpl.Sets {
			weight := 0.0
			if setTpl.Weight != nil && *setTpl.Weight != 0 {
				weight = *setTpl.Weight
			}
			reps := 1
			if setTpl.Reps != nil && *setTpl.Reps != 0 {
				reps = *setTpl.Reps
			}
			set, err := NewSet(setTpl.OrderIndex, weight, reps, nil, nil, nil)
			if err != nil {
				return nil, err
			}
			impl.Sets = append(impl.Sets, set)
		}
		training.Implementations = append(training.Implementations, impl)
	}

	training.AssignIDs()
	return training, nil
}

// AssignIDs fills in identities for new implementation and set templates.
func (t *TrainingTemplate) AssignIDs() {
	for i := range t.Implementations {
		if t.Implementations[i].ID.IsZero() {
			t.Implementations[i].ID = primitive.NewObjectID()
		}
		for j := range t.Implementations[i].Sets {
			if t.Implementations[i].Sets[j].ID.IsZero() {
				t.Implementations[i].Sets[j].ID = primitive.NewObjectID()
			}
		}
	}
}

// Validate rejects templates that could never materialize.
func (t *TrainingTemplate) Validate() error {
	if t.Name == "" {
		return newValidationError("name", "is required")
	}
	for _, impl := range t.Implementations {
		if impl.ExerciseID.IsZero() {
			return newValidationError("exercise_id", "is required")
		}
		for _, set := range impl.Sets {
			if set.Weight != nil && *set.Weight < 0 {
				return newValidationError("weight", "must be >= 0, got %v", *set.Weight)
			}
			if set.Reps != nil && *set.Reps < 0 {
				return newValidationError("reps", "must be >= 0, got %d", *set.Reps)
			}
		}
	}
	return nil
}
