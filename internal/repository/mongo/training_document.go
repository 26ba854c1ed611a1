package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage shapes for the training aggregate. Measurement values are stored as
// plain numbers and re-validated on the way out.

type setDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	OrderIndex int                `bson:"orderIndex"`
	Weight     float64            `bson:"weight"`
	Reps       int                `bson:"reps"`
	RestTime   *int               `bson:"restTime,omitempty"`
	Duration   *int               `bson:"duration,omitempty"`
	RPE        *int               `bson:"rpe,omitempty"`
}

type implementationDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	ExerciseID primitive.ObjectID `bson:"exerciseId"`
	OrderIndex int                `bson:"orderIndex"`
	Sets       []setDocument      `bson:"sets"`
}

type trainingDocument struct {
	ID              primitive.ObjectID       `bson:"_id"`
	UserID          primitive.ObjectID       `bson:"userId"`
	TemplateID      *primitive.ObjectID      `bson:"templateId,omitempty"`
	DateTime        time.Time                `bson:"dateTime"`
	Duration        *int                     `bson:"duration,omitempty"`
	Notes           *string                  `bson:"notes,omitempty"`
	Status          string                   `bson:"status"`
	ShareToken      *string                  `bson:"shareToken,omitempty"`
	Implementations []implementationDocument `bson:"implementations"`
	CreatedAt       time.Time                `bson:"createdAt"`
	UpdatedAt       time.Time                `bson:"updatedAt"`
}

func newTrainingDocument(t *domain.Training) *trainingDocument {
	doc := &trainingDocument{
		ID:              t.ID,
		UserID:          t.UserID,
		TemplateID:      t.TemplateID,
		DateTime:        t.DateTime,
		Notes:           t.Notes,
		Status:          string(t.Status),
		ShareToken:      t.ShareToken,
		Implementations: make([]implementationDocument, 0, len(t.Implementations)),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Duration != nil {
		s := t.Duration.Seconds()
		doc.Duration = &s
	}
	for _, impl := range t.Implementations {
		implDoc := implementationDocument{
			ID:         impl.ID,
			ExerciseID: impl.ExerciseID,
			OrderIndex: impl.OrderIndex,
			Sets:       make([]setDocument, 0, len(impl.Sets)),
		}
		for _, s := range impl.Sets {
			setDoc := setDocument{
				ID:         s.ID,
				OrderIndex: s.OrderIndex,
				Weight:     s.Weight.Value(),
				Reps:       s.Reps.Value(),
			}
			if s.RestTime != nil {
				v := s.RestTime.Seconds()
				setDoc.RestTime = &v
			}
			if s.Duration != nil {
				v := s.Duration.Seconds()
				setDoc.Duration = &v
			}
			if s.RPE != nil {
				v := s.RPE.Value()
				setDoc.RPE = &v
			}
			implDoc.Sets = append(implDoc.Sets, setDoc)
		}
		doc.Implementations = append(doc.Implementations, implDoc)
	}
	return doc
}

func (d *trainingDocument) toDomain() (*domain.Training, error) {
	duration, err := domain.OptionalDuration(d.Duration)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseTrainingStatus(d.Status)
	if err != nil {
		return nil, err
	}
	t := &domain.Training{
		ID:              d.ID,
		UserID:          d.UserID,
		TemplateID:      d.TemplateID,
		DateTime:        d.DateTime,
		Duration:        duration,
		Notes:           d.Notes,
		Status:          status,
		ShareToken:      d.ShareToken,
		Implementations: make([]domain.Implementation, 0, len(d.Implementations)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, implDoc := range d.Implementations {
		impl := domain.Implementation{
			ID:         implDoc.ID,
			TrainingID: d.ID,
			ExerciseID: implDoc.ExerciseID,
			OrderIndex: implDoc.OrderIndex,
			Sets:       make([]domain.Set, 0, len(implDoc.Sets)),
		}
		for _, setDoc := range implDoc.Sets {
			s, err := domain.NewSet(setDoc.OrderIndex, setDoc.Weight, setDoc.Reps, setDoc.RestTime, setDoc.Duration, setDoc.RPE)
			if err != nil {
				return nil, err
			}
			s.ID = setDoc.ID
			s.ImplementationID = implDoc.ID
			impl.Sets = append(impl.Sets, s)
		}
		t.Implementations = append(t.Implementations, impl)
	}
	return t, nil
}
