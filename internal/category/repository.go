package category

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("category not found")

type Repository interface {
	ListActive() ([]Category, error)
	GetByID(id int) (Category, error)
}

type InMemoryRepository struct {
	mu         sync.RWMutex
	categories []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	return &InMemoryRepository{categories: append([]Category(nil), seed...)}
}

func (r *InMemoryRepository) ListActive() ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Category, 0)
	for _, c := range r.categories {
		if c.IsActive {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}
