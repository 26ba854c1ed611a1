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

type bodyMetricRepo struct {
	mu      sync.RWMutex
	metrics []domain.UserBodyMetric
}

func NewBodyMetricRepository() repository.BodyMetricRepository {
	return &bodyMetricRepo{}
}

func (r *bodyMetricRepo) Create(_ context.Context, metric *domain.UserBodyMetric) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric.ID.IsZero() {
		metric.ID = primitive.NewObjectID()
	}
	r.metrics = append(r.metrics, *metric)
	return metric.ID, nil
}

func (r *bodyMetricRepo) ListByUser(_ context.Context, userID primitive.ObjectID, from, to *time.Time) ([]domain.UserBodyMetric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make([]domain.UserBodyMetric, 0)
	for _, m := range r.metrics {
		if m.UserID != userID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		metrics = append(metrics, m)
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Date.Before(metrics[j].Date)
	})
	return metrics, nil
}

func (r *bodyMetricRepo) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.UserBodyMetric, error) {
	metrics, err := r.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := metrics[len(metrics)-1]
	return &latest, nil
}
