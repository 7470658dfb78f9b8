package product

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(filter Filter) ([]Product, error) {
	return s.repo.List(filter)
}

func (s *Service) GetByID(id int) (Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// GetByIDs returns the products for the given ids, active or not; callers
// that care about availability run CheckStock on each.
func (s *Service) GetByIDs(ids []int) ([]Product, error) {
	return s.repo.GetByIDs(ids)
}
