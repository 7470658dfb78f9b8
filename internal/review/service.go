package review

import "github.com/mallgo/mall-backend/internal/product"

type Service struct {
	repo     Repository
	products *product.Service
}

func NewService(repo Repository, products *product.Service) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) ListByProduct(productID int) ([]Review, error) {
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(productID)
}

func (s *Service) Create(review Review) (Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return Review{}, ErrInvalidRating
	}
	if _, err := s.products.GetByID(review.ProductID); err != nil {
		return Review{}, err
	}
	return s.repo.Create(review)
}
