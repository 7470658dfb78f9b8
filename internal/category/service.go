package category

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive() ([]Category, error) {
	return s.repo.ListActive()
}

func (s *Service) GetByID(id int) (Category, error) {
	return s.repo.GetByID(id)
}
