package cart

import (
	"errors"
	"sync"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	GetOrCreateByUser(userID int) (Cart, error)
	AddItem(cartID, productID, quantity int) (Item, error)
	UpdateItemQuantity(cartID, productID, quantity int) error
	RemoveItem(cartID, productID int) error
	SelectItem(cartID, productID int, selected bool) error
	RemoveItems(cartID int, productIDs []int) error
	Clear(cartID int) error
}

type InMemoryRepository struct {
	mu         sync.Mutex
	carts      []Cart
	nextCartID int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextCartID: 1, nextItemID: 1}
}

func (r *InMemoryRepository) GetOrCreateByUser(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.carts {
		if c.UserID == userID {
			return cloneCart(c), nil
		}
	}

	c := Cart{ID: r.nextCartID, UserID: userID, Items: nil}
	r.nextCartID++
	r.carts = append(r.carts, c)
	return cloneCart(c), nil
}

func (r *InMemoryRepository) AddItem(cartID, productID, quantity int) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ci, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for ii, item := range c.Items {
			if item.ProductID == productID {
				item.Quantity += quantity
				r.carts[ci].Items[ii] = item
				return item, nil
			}
		}
		item := Item{ID: r.nextItemID, CartID: cartID, ProductID: productID, Quantity: quantity, Selected: true}
		r.nextItemID++
		r.carts[ci].Items = append(r.carts[ci].Items, item)
		return item, nil
	}
	return Item{}, ErrItemNotFound
}

func (r *InMemoryRepository) UpdateItemQuantity(cartID, productID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ci, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for ii, item := range c.Items {
			if item.ProductID == productID {
				item.Quantity = quantity
				r.carts[ci].Items[ii] = item
				return nil
			}
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItem(cartID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ci, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for ii, item := range c.Items {
			if item.ProductID == productID {
				r.carts[ci].Items = append(c.Items[:ii], c.Items[ii+1:]...)
				return nil
			}
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) SelectItem(cartID, productID int, selected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ci, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for ii, item := range c.Items {
			if item.ProductID == productID {
				item.Selected = selected
				r.carts[ci].Items[ii] = item
				return nil
			}
		}
	}
	return ErrItemNotFound
}

func (r *InMemoryRepository) RemoveItems(cartID int, productIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[int]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}

	for ci, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		kept := c.Items[:0]
		for _, item := range c.Items {
			if !wanted[item.ProductID] {
				kept = append(kept, item)
			}
		}
		r.carts[ci].Items = kept
		return nil
	}
	return nil
}

func (r *InMemoryRepository) Clear(cartID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ci, c := range r.carts {
		if c.ID == cartID {
			r.carts[ci].Items = nil
		}
	}
	return nil
}

func cloneCart(c Cart) Cart {
	out := c
	out.Items = append([]Item(nil), c.Items...)
	return out
}
