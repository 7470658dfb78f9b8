package address

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	ListByUser(userID int) ([]Address, error)
	GetByID(id int) (Address, error)
	Create(addr Address) (Address, error)
	Update(id int, addr Address) (Address, error)
	Delete(id int) error
	SetDefault(userID, id int) error
}

type InMemoryRepository struct {
	mu        sync.RWMutex
	addresses []Address
	nextID    int
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	repo := &InMemoryRepository{addresses: make([]Address, 0, len(seed))}

	maxID := 0
	for _, a := range seed {
		repo.addresses = append(repo.addresses, a)
		if a.ID > maxID {
			maxID = a.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Address, 0)
	for _, a := range r.addresses {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.addresses {
		if a.ID == id {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Create(addr Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr.ID == 0 {
		addr.ID = r.nextID
		r.nextID++
	}
	if addr.IsDefault {
		r.clearDefaultLocked(addr.UserID)
	}
	r.addresses = append(r.addresses, addr)
	return addr, nil
}

func (r *InMemoryRepository) Update(id int, upd Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.addresses {
		if a.ID == id {
			upd.ID = a.ID
			upd.UserID = a.UserID
			if upd.IsDefault && !a.IsDefault {
				r.clearDefaultLocked(a.UserID)
			}
			r.addresses[i] = upd
			return upd, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.addresses {
		if a.ID == id {
			r.addresses = append(r.addresses[:i], r.addresses[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) SetDefault(userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, a := range r.addresses {
		if a.ID == id && a.UserID == userID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	r.clearDefaultLocked(userID)
	for i, a := range r.addresses {
		if a.ID == id {
			a.IsDefault = true
			r.addresses[i] = a
		}
	}
	return nil
}

func (r *InMemoryRepository) clearDefaultLocked(userID int) {
	for i, a := range r.addresses {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.addresses[i] = a
		}
	}
}
