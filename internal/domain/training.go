package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingStatus tracks a training session. Any status may follow any other;
// callers decide which transitions make sense.
type TrainingStatus string

const (
	TrainingStatusPlanned    TrainingStatus = "planned"
	TrainingStatusInProgress TrainingStatus = "in_progress"
	TrainingStatusCompleted  TrainingStatus = "completed"
	TrainingStatusSkipped    TrainingStatus = "skipped"
)

// ParseTrainingStatus accepts any casing, e.g. "COMPLETED" or "completed".
func ParseTrainingStatus(s string) (TrainingStatus, error) {
	switch status := TrainingStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case TrainingStatusPlanned, TrainingStatusInProgress, TrainingStatusCompleted, TrainingStatusSkipped:
		return status, nil
	default:
		return "", newValidationError("status", "unknown training status %q", s)
	}
}

// Set is one executed block of repetitions within an Implementation.
type Set struct {
	ID               primitive.ObjectID `json:"id"`
	ImplementationID primitive.ObjectID `json:"implementationId"`
	OrderIndex       int                `json:"orderIndex"`
	Weight           Weight             `json:"weight"`
	Reps             Reps               `json:"reps"`
	RestTime         *RestTime          `json:"restTime,omitempty"`
	Duration         *Duration          `json:"duration,omitempty"`
	RPE              *RPE               `json:"rpe,omitempty"`
}

// NewSet builds a Set from raw values, validating each measurement.
func NewSet(orderIndex int, weight float64, reps int, restTime, duration, rpe *int) (Set, error) {
	if orderIndex < 0 {
		return Set{}, newValidationError("order_index", "must be >= 0, got %d", orderIndex)
	}
	w, err := NewWeight(weight)
	if err != nil {
		return Set{}, err
	}
	r, err := NewReps(reps)
	if err != nil {
		return Set{}, err
	}
	rt, err := OptionalRestTime(restTime)
	if err != nil {
		return Set{}, err
	}
	d, err := OptionalDuration(duration)
	if err != nil {
		return Set{}, err
	}
	p, err := OptionalRPE(rpe)
	if err != nil {
		return Set{}, err
	}
	return Set{OrderIndex: orderIndex, Weight: w, Reps: r, RestTime: rt, Duration: d, RPE: p}, nil
}

// Implementation is one exercise performed within a Training. It owns its sets.
type Implementation struct {
	ID         primitive.ObjectID `json:"id"`
	TrainingID primitive.ObjectID `json:"trainingId"`
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	OrderIndex int                `json:"orderIndex"`
	Sets       []Set              `json:"sets"`
}

// Training is the aggregate root of a workout session. Implementations and
// their sets are always read and written together.
type Training struct {
	ID              primitive.ObjectID  `json:"id"`
	UserID          primitive.ObjectID  `json:"userId"`
	TemplateID      *primitive.ObjectID `json:"templateId,omitempty"`
	DateTime        time.Time           `json:"dateTime"`
	Duration        *Duration           `json:"duration,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Status          TrainingStatus      `json:"status"`
	ShareToken      *string             `json:"-"`
	Implementations []Implementation    `json:"implementations"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func (t *Training) IsCompleted() bool {
	return t.Status == TrainingStatusCompleted
}

func (t *Training) OwnedBy(userID primitive.ObjectID) bool {
	return t.UserID == userID
}

// AssignIDs gives every child without an identity a fresh one and points it
// at its parent.
func (t *Training) AssignIDs() {
	for i := range t.Implementations {
		impl := &t.Implementations[i]
		if impl.ID.IsZero() {
			impl.ID = primitive.NewObjectID()
		}
		impl.TrainingID = t.ID
		for j := range impl.Sets {
			if impl.Sets[j].ID.IsZero() {
				impl.Sets[j].ID = primitive.NewObjectID()
			}
			impl.Sets[j].ImplementationID = impl.ID
		}
	}
}

// Validate checks the invariants a Training must hold before being stored.
func (t *Training) Validate() error {
	if t.UserID.IsZero() {
		return newValidationError("user_id", "is required")
	}
	if t.DateTime.IsZero() {
		return newValidationError("date_time", "is required")
	}
	if _, err := ParseTrainingStatus(string(t.Status)); err != nil {
		return err
	}
	for i, impl := range t.Implementations {
		if impl.ExerciseID.IsZero() {
			return newValidationError(fmt.Sprintf("implementations[%d].exercise_id", i), "is required")
		}
		for j, set := range impl.Sets {
			if set.Reps.Value() <= 0 {
				return newValidationError(fmt.Sprintf("implementations[%d].sets[%d].reps", i, j), "must be > 0")
			}
		}
	}
	return nil
}

// TrainingUpdate is a partial update. Nil fields are left untouched.
// A non-nil Implementations replaces the whole collection, even when empty.
type TrainingUpdate struct {
	DateTime        *time.Time
	Duration        *Duration
	Notes           *string
	Status          *TrainingStatus
	Implementations *[]Implementation
}

// Apply writes the update onto t. Implementations are never merged.
func (t *Training) Apply(u TrainingUpdate, now time.Time) {
	if u.DateTime != nil {
		t.DateTime = u.DateTime.UTC()
	}
	if u.Duration != nil {
		d := *u.Duration
		t.Duration = &d
	}
	if u.Notes != nil {
		n := *u.Notes
		t.Notes = &n
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Implementations != nil {
		replaced := make([]Implementation, len(*u.Implementations))
		for i, impl := range *u.Implementations {
			impl.Sets = append([]Set(nil), impl.Sets...)
			replaced[i] = impl
		}
		t.Implementations = replaced
		t.AssignIDs()
	}
	t.UpdatedAt = now
}

// Clone returns a deep copy so callers can hand out trainings without sharing
// nested slices.
func (t *Training) Clone() *Training {
	c := *t
	if t.TemplateID != nil {
		id := *t.TemplateID
		c.TemplateID = &id
	}
	if t.Duration != nil {
		d := *t.Duration
		c.Duration = &d
	}
	if t.Notes != nil {
		n := *t.Notes
		c.Notes = &n
	}
	if t.ShareToken != nil {
		s := *t.ShareToken
		c.ShareToken = &s
	}
	c.Implementations = make([]Implementation, len(t.Implementations))
	for i, impl := range t.Implementations {
		impl.Sets = append([]Set(nil), impl.Sets...)
		c.Implementations[i] = impl
	}
	return &c
}
