package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type templateRepo struct {
	mu        sync.RWMutex
	templates map[primitive.ObjectID]*domain.TrainingTemplate
}

func NewTemplateRepository() repository.TemplateRepository {
	return &templateRepo{
		templates: make(map[primitive.ObjectID]*domain.TrainingTemplate),
	}
}

func cloneTemplate(t *domain.TrainingTemplate) *domain.TrainingTemplate {
	c := *t
	if t.UserID != nil {
		id := *t.UserID
		c.UserID = &id
	}
	c.Implementations = make([]domain.ImplementationTemplate, len(t.Implementations))
	for i, impl := range t.Implementations {
		impl.Sets = append([]domain.SetTemplate(nil), impl.Sets...)
		c.Implementations[i] = impl
	}
	return &c
}

func (r *templateRepo) Create(_ context.Context, tpl *domain.TrainingTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tpl.ID.IsZero() {
		tpl.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	tpl.AssignIDs()
	r.templates[tpl.ID] = cloneTemplate(tpl)
	return tpl.ID, nil
}

func (r *templateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTemplate(tpl), nil
}

func (r *templateRepo) ListVisible(_ context.Context, userID primitive.ObjectID) ([]domain.TrainingTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]domain.TrainingTemplate, 0)
	for _, tpl := range r.templates {
		if tpl.VisibleTo(userID) {
			templates = append(templates, *cloneTemplate(tpl))
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (r *templateRepo) Update(_ context.Context, tpl *domain.TrainingTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[tpl.ID]; !ok {
		return repository.ErrNotFound
	}
	tpl.UpdatedAt = time.Now().UTC()
	tpl.AssignIDs()
	r.templates[tpl.ID] = cloneTemplate(tpl)
	return nil
}

func (r *templateRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tpl, ok := r.templates[id]
	if !ok || tpl.UserID == nil || *tpl.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}
