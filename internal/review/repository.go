package review

import (
	"errors"
	"sync"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type Repository interface {
	ListByProduct(productID int) ([]Review, error)
	Create(review Review) (Review, error)
}

type InMemoryRepository struct {
	mu      sync.RWMutex
	reviews []Review
	nextID  int
}

func NewInMemoryRepository(seed []Review) *InMemoryRepository {
	repo := &InMemoryRepository{reviews: make([]Review, 0, len(seed))}

	maxID := 0
	for _, rv := range seed {
		repo.reviews = append(repo.reviews, rv)
		if rv.ID > maxID {
			maxID = rv.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) ListByProduct(productID int) ([]Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Review, 0)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			result = append(result, rv)
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Create(review Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == 0 {
		review.ID = r.nextID
		r.nextID++
	}
	r.reviews = append(r.reviews, review)
	return review, nil
}
