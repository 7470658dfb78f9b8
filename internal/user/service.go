package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrWrongPassword = errors.New("wrong password")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) GetByEmail(email string) (User, error) {
	return s.repo.GetByEmail(email)
}

func (s *Service) Register(user User) (User, error) {
	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	if _, err := s.repo.GetByUsername(user.Username); err == nil {
		return User{}, ErrUsernameExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	return s.repo.Create(user)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) UpdateProfile(id int, upd User) (User, error) {
	if upd.Email != "" {
		if existing, err := s.repo.GetByEmail(upd.Email); err == nil && existing.ID != id {
			return User{}, ErrEmailExists
		} else if err != nil && err != ErrNotFound {
			return User{}, err
		}
	}
	if upd.Username != "" {
		if existing, err := s.repo.GetByUsername(upd.Username); err == nil && existing.ID != id {
			return User{}, ErrUsernameExists
		} else if err != nil && err != ErrNotFound {
			return User{}, err
		}
	}

	return s.repo.Update(id, upd)
}

func (s *Service) ChangePassword(id int, oldPassword, newPassword, updatedAt string) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(id, string(hashed), updatedAt)
}

// ResetPassword sets a new password for the account behind email. The caller
// is responsible for verifying ownership of the address first.
func (s *Service) ResetPassword(email, newPassword, updatedAt string) error {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(user.ID, string(hashed), updatedAt)
}
