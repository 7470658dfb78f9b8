package cart

import "github.com/mallgo/mall-backend/internal/product"

type Service struct {
	repo     Repository
	products *product.Service
}

func NewService(repo Repository, products *product.Service) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the user's cart with product data joined onto each item.
func (s *Service) Get(userID int) (Cart, error) {
	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return Cart{}, err
	}
	if len(c.Items) == 0 {
		c.Items = []Item{}
		return c, nil
	}

	ids := make([]int, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return Cart{}, err
	}

	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i, item := range c.Items {
		if p, ok := byID[item.ProductID]; ok {
			c.Items[i].Product = &p
		}
	}
	return c, nil
}

// AddItem puts quantity more units of a product into the cart. The combined
// quantity must fit the current stock.
func (s *Service) AddItem(userID, productID, quantity int) (Item, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return Item{}, err
	}

	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return Item{}, err
	}

	total := quantity
	for _, item := range c.Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	if err := product.CheckStock(p, total); err != nil {
		return Item{}, err
	}

	return s.repo.AddItem(c.ID, productID, quantity)
}

func (s *Service) UpdateItemQuantity(userID, productID, quantity int) error {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return err
	}
	if err := product.CheckStock(p, quantity); err != nil {
		return err
	}

	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateItemQuantity(c.ID, productID, quantity)
}

func (s *Service) RemoveItem(userID, productID int) error {
	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.repo.RemoveItem(c.ID, productID)
}

func (s *Service) SelectItem(userID, productID int, selected bool) error {
	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.repo.SelectItem(c.ID, productID, selected)
}

// RemoveItems drops the given products from the cart, used after checkout.
func (s *Service) RemoveItems(userID int, productIDs []int) error {
	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.repo.RemoveItems(c.ID, productIDs)
}

func (s *Service) Clear(userID int) error {
	c, err := s.repo.GetOrCreateByUser(userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(c.ID)
}
