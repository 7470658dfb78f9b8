package order

import (
	"errors"
	"sync"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidStatus     = errors.New("order is not in the required status")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	// Create persists the order and its items, takes stock for every line,
	// removes the consumed cart products and spends the coupon, all
	// atomically. Any failure leaves no trace.
	Create(order Order, consumedCartProducts []int) (Order, error)
	ListByUser(userID int, status *int) ([]Order, error)
	GetByID(id int) (Order, error)
	Pay(id int, paymentMethod, paymentNo, paymentTime string) error
	Ship(id int, shippingNo, shippingCompany string) error
	ConfirmReceive(id int, completeTime string) error
	Cancel(id int) error
}

// Collaborators are the side effects the in-memory repository needs to run
// atomically alongside order creation. The Postgres repository does the same
// work with SQL inside one transaction.
type Collaborators struct {
	TakeStock      func(productID, quantity int) error
	RestoreStock   func(productID, quantity int)
	PruneCart      func(userID int, productIDs []int) error
	MarkCouponUsed func(userCouponID int, usedAt string) error
}

type InMemoryRepository struct {
	mu     sync.Mutex
	orders []Order
	nextID int
	collab Collaborators
}

func NewInMemoryRepository(collab Collaborators) *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, collab: collab}
}

func (r *InMemoryRepository) Create(order Order, consumedCartProducts []int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := make([]Item, 0, len(order.Items))
	for _, item := range order.Items {
		if err := r.collab.TakeStock(item.ProductID, item.Quantity); err != nil {
			for _, t := range taken {
				r.collab.RestoreStock(t.ProductID, t.Quantity)
			}
			return Order{}, err
		}
		taken = append(taken, item)
	}

	if order.UserCouponID != nil {
		if err := r.collab.MarkCouponUsed(*order.UserCouponID, order.CreatedAt); err != nil {
			for _, t := range taken {
				r.collab.RestoreStock(t.ProductID, t.Quantity)
			}
			return Order{}, err
		}
	}

	if len(consumedCartProducts) > 0 {
		if err := r.collab.PruneCart(order.UserID, consumedCartProducts); err != nil {
			for _, t := range taken {
				r.collab.RestoreStock(t.ProductID, t.Quantity)
			}
			return Order{}, err
		}
	}

	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].ID = i + 1
		order.Items[i].OrderID = order.ID
	}
	r.orders = append(r.orders, cloneOrder(order))
	return order, nil
}

func (r *InMemoryRepository) ListByUser(userID int, status *int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID != userID {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Pay(id int, paymentMethod, paymentNo, paymentTime string) error {
	return r.transition(id, StatusPendingPayment, func(o *Order) {
		o.Status = StatusPendingShipment
		o.PaymentMethod = paymentMethod
		o.PaymentNo = paymentNo
		o.PaymentTime = paymentTime
	})
}

func (r *InMemoryRepository) Ship(id int, shippingNo, shippingCompany string) error {
	return r.transition(id, StatusPendingShipment, func(o *Order) {
		o.Status = StatusPendingReceipt
		o.ShippingNo = shippingNo
		o.ShippingCompany = shippingCompany
	})
}

func (r *InMemoryRepository) ConfirmReceive(id int, completeTime string) error {
	return r.transition(id, StatusPendingReceipt, func(o *Order) {
		o.Status = StatusCompleted
		o.CompleteTime = completeTime
	})
}

func (r *InMemoryRepository) Cancel(id int) error {
	err := r.transition(id, StatusPendingPayment, func(o *Order) {
		o.Status = StatusCancelled
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			for _, item := range o.Items {
				r.collab.RestoreStock(item.ProductID, item.Quantity)
			}
		}
	}
	return nil
}

func (r *InMemoryRepository) transition(id, required int, apply func(*Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == id {
			if o.Status != required {
				return ErrInvalidStatus
			}
			apply(&o)
			r.orders[i] = o
			return nil
		}
	}
	return ErrNotFound
}

func cloneOrder(o Order) Order {
	out := o
	out.Items = append([]Item(nil), o.Items...)
	if o.UserCouponID != nil {
		id := *o.UserCouponID
		out.UserCouponID = &id
	}
	return out
}
