package product

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	List(filter Filter) ([]Product, error)
	GetByID(id int) (Product, error)
	GetByIDs(ids []int) ([]Product, error)
}

// CheckStock validates that a purchase of qty units can be satisfied.
func CheckStock(p Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.IsActive {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	return nil
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	products []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	return &InMemoryRepository{products: append([]Product(nil), seed...)}
}

func (r *InMemoryRepository) List(filter Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Product, 0)
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, p)
	}

	orderProducts(result, filter.OrderBy)
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIDs(ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Product, 0, len(ids))
	for _, id := range ids {
		for _, p := range r.products {
			if p.ID == id {
				result = append(result, p)
				break
			}
		}
	}
	return result, nil
}

// TakeStock conditionally reserves stock and bumps the sales counter. It
// fails without side effects when fewer than qty units remain.
func (r *InMemoryRepository) TakeStock(id, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			if p.Stock < qty {
				return ErrInsufficientStock
			}
			p.Stock -= qty
			p.Sales += qty
			r.products[i] = p
			return nil
		}
	}
	return ErrNotFound
}

// RestoreStock reverses a TakeStock after a cancellation.
func (r *InMemoryRepository) RestoreStock(id, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			p.Stock += qty
			p.Sales -= qty
			r.products[i] = p
		}
	}
}

// SetStock exists for tests that need to adjust inventory directly.
func (r *InMemoryRepository) SetStock(id, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			p.Stock = stock
			r.products[i] = p
		}
	}
}

func orderProducts(products []Product, orderBy string) {
	less := func(a, b Product) bool { return a.ID < b.ID }
	switch orderBy {
	case "price":
		less = func(a, b Product) bool { return a.Price < b.Price }
	case "-price":
		less = func(a, b Product) bool { return a.Price > b.Price }
	case "sales", "-sales":
		less = func(a, b Product) bool { return a.Sales > b.Sales }
	case "rating", "-rating":
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case "created_at", "-created_at":
		less = func(a, b Product) bool { return a.CreatedAt > b.CreatedAt }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
