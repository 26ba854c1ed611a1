package memory

import (
	"context"
	"sync"

	"alcyxob/workout-tracker/internal/repository"
)

// transactor serializes transactional blocks. It does not roll back: each
// memory repository write is already atomic on its own.
type transactor struct {
	mu sync.Mutex
}

func NewTransactor() repository.Transactor {
	return &transactor{}
}

func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
