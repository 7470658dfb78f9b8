package user

import (
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
)

type Repository interface {
	GetByID(id int) (User, error)
	GetByEmail(email string) (User, error)
	GetByUsername(username string) (User, error)
	Create(user User) (User, error)
	Update(id int, user User) (User, error)
	UpdatePassword(id int, hashed, updatedAt string) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}

	maxID := 0
	for _, u := range seed {
		repo.users = append(repo.users, u)
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByUsername(username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Create(u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users = append(r.users, u)
	return u, nil
}

func (r *InMemoryRepository) Update(id int, upd User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			if upd.Email != "" {
				u.Email = upd.Email
			}
			if upd.Username != "" {
				u.Username = upd.Username
			}
			if upd.Phone != "" {
				u.Phone = upd.Phone
			}
			if upd.UpdatedAt != "" {
				u.UpdatedAt = upd.UpdatedAt
			}
			r.users[i] = u
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) UpdatePassword(id int, hashed, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, u := range r.users {
		if u.ID == id {
			u.Password = hashed
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			return nil
		}
	}
	return ErrNotFound
}
