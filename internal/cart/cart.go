package cart

import "github.com/mallgo/mall-backend/internal/product"

// Cart holds a user's pending purchases. Each user has at most one cart,
// created on first use; items are unique per (cart, product).
type Cart struct {
	ID     int    `json:"cartId"`
	UserID int    `json:"userId"`
	Items  []Item `json:"items"`
}

// Item is one cart line. Product carries the joined catalog data and is only
// populated on reads.
type Item struct {
	ID        int              `json:"itemId"`
	CartID    int              `json:"-"`
	ProductID int              `json:"productId"`
	Quantity  int              `json:"quantity"`
	Selected  bool             `json:"selected"`
	Product   *product.Product `json:"product,omitempty"`
}
