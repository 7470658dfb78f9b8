package address

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(userID int) ([]Address, error) {
	return s.repo.ListByUser(userID)
}

// GetOwned loads an address and hides it behind ErrNotFound when it belongs
// to a different user.
func (s *Service) GetOwned(userID, id int) (Address, error) {
	addr, err := s.repo.GetByID(id)
	if err != nil {
		return Address{}, err
	}
	if addr.UserID != userID {
		return Address{}, ErrNotFound
	}
	return addr, nil
}

func (s *Service) Create(addr Address) (Address, error) {
	return s.repo.Create(addr)
}

func (s *Service) Update(userID, id int, upd Address) (Address, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Address{}, err
	}
	upd.UserID = userID
	return s.repo.Update(id, upd)
}

func (s *Service) Delete(userID, id int) error {
	if _, err := s.GetOwned(userID, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *Service) SetDefault(userID, id int) error {
	return s.repo.SetDefault(userID, id)
}
