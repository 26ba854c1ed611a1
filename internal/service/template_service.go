package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SetTemplateInput struct {
	OrderIndex int
	Weight     *float64
	Reps       *int
}

type ImplementationTemplateInput struct {
	ExerciseID primitive.ObjectID
	OrderIndex int
	Sets       []SetTemplateInput
}

type TemplateInput struct {
	Name            string
	Description     string
	Implementations []ImplementationTemplateInput
}

type TemplateService interface {
	CreateTemplate(ctx context.Context, userID primitive.ObjectID, input TemplateInput) (*domain.TrainingTemplate, error)
	GetTemplate(ctx context.Context, userID, templateID primitive.ObjectID) (*domain.TrainingTemplate, error)
	ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingTemplate, error)
	UpdateTemplate(ctx context.Context, userID, templateID primitive.ObjectID, input TemplateInput) (*domain.TrainingTemplate, error)
	DeleteTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
	now          func() time.Time
}

func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		now:          utcNow,
	}
}

func (in TemplateInput) implementations() []domain.ImplementationTemplate {
	impls := make([]domain.ImplementationTemplate, 0, len(in.Implementations))
	for _, implIn := range in.Implementations {
		sets := make([]domain.SetTemplate, 0, len(implIn.Sets))
		for _, setIn := range implIn.Sets {
			sets = append(sets, domain.SetTemplate{
				OrderIndex: setIn.OrderIndex,
				Weight:     setIn.Weight,
				Reps:       setIn.Reps,
			})
		}
		impls = append(impls, domain.ImplementationTemplate{
			ExerciseID: implIn.ExerciseID,
			OrderIndex: implIn.OrderIndex,
			Sets:       sets,
		})
	}
	return impls
}

func (s *templateService) CreateTemplate(ctx context.Context, userID primitive.ObjectID, input TemplateInput) (*domain.TrainingTemplate, error) {
	owner := userID
	now := s.now()
	tpl := &domain.TrainingTemplate{
		UserID:          &owner,
		Name:            input.Name,
		Description:     input.Description,
		Implementations: input.implementations(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	tpl.AssignIDs()

	if _, err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return tpl, nil
}

// GetTemplate returns a template the user owns or a system template.
func (s *templateService) GetTemplate(ctx context.Context, userID, templateID primitive.ObjectID) (*domain.TrainingTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !tpl.VisibleTo(userID) {
		return nil, ErrTemplateNotFound
	}
	return tpl, nil
}

func (s *templateService) ListTemplates(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingTemplate, error) {
	return s.templateRepo.ListVisible(ctx, userID)
}

// UpdateTemplate replaces name, description and every implementation
// template. System templates are read-only.
func (s *templateService) UpdateTemplate(ctx context.Context, userID, templateID primitive.ObjectID, input TemplateInput) (*domain.TrainingTemplate, error) {
	tpl, err := s.owned(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	tpl.Name = input.Name
	tpl.Description = input.Description
	tpl.Implementations = input.implementations()
	tpl.UpdatedAt = s.now()
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	tpl.AssignIDs()

	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("update template: %w", err)
	}
	return tpl, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, userID, templateID primitive.ObjectID) error {
	if _, err := s.owned(ctx, userID, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

func (s *templateService) owned(ctx context.Context, userID, templateID primitive.ObjectID) (*domain.TrainingTemplate, error) {
	tpl, err := s.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.IsSystem() {
		return nil, ErrTemplateAccessDenied
	}
	return tpl, nil
}
