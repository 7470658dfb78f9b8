package returns

import (
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("return request not found")
	ErrDuplicate     = errors.New("a return request for this product already exists")
	ErrInvalidStatus = errors.New("return request is not in the required status")
)

type Repository interface {
	Create(req Request) (Request, error)
	ListByUser(userID int, status *int) ([]Request, error)
	GetByID(id int) (Request, error)
	Cancel(id int) error
	UpdateShipping(id int, shippingNo, shippingCompany string) error
	Approve(id int, exchangeOrderID *int) error
	Reject(id int) error
	Complete(id int) error
}

type InMemoryRepository struct {
	mu       sync.Mutex
	requests []Request
	nextID   int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(req Request) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.OrderID == req.OrderID && existing.ProductID == req.ProductID {
			return Request{}, ErrDuplicate
		}
	}

	req.ID = r.nextID
	r.nextID++
	for i := range req.Images {
		req.Images[i].ID = i + 1
		req.Images[i].ReturnID = req.ID
	}
	r.requests = append(r.requests, cloneRequest(req))
	return req, nil
}

func (r *InMemoryRepository) ListByUser(userID int, status *int) ([]Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Request, 0)
	for _, req := range r.requests {
		if req.UserID != userID {
			continue
		}
		if status != nil && req.Status != *status {
			continue
		}
		result = append(result, cloneRequest(req))
	}
	return result, nil
}

func (r *InMemoryRepository) GetByID(id int) (Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.requests {
		if req.ID == id {
			return cloneRequest(req), nil
		}
	}
	return Request{}, ErrNotFound
}

func (r *InMemoryRepository) Cancel(id int) error {
	return r.transition(id, []int{StatusPending}, func(req *Request) {
		req.Status = StatusCancelled
	})
}

func (r *InMemoryRepository) UpdateShipping(id int, shippingNo, shippingCompany string) error {
	return r.transition(id, []int{StatusApproved}, func(req *Request) {
		req.ShippingNo = shippingNo
		req.ShippingCompany = shippingCompany
	})
}

func (r *InMemoryRepository) Approve(id int, exchangeOrderID *int) error {
	return r.transition(id, []int{StatusPending}, func(req *Request) {
		req.Status = StatusApproved
		req.ExchangeOrderID = exchangeOrderID
	})
}

func (r *InMemoryRepository) Reject(id int) error {
	return r.transition(id, []int{StatusPending}, func(req *Request) {
		req.Status = StatusRejected
	})
}

func (r *InMemoryRepository) Complete(id int) error {
	return r.transition(id, []int{StatusApproved}, func(req *Request) {
		req.Status = StatusCompleted
	})
}

func (r *InMemoryRepository) transition(id int, allowed []int, apply func(*Request)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, req := range r.requests {
		if req.ID == id {
			ok := false
			for _, s := range allowed {
				if req.Status == s {
					ok = true
				}
			}
			if !ok {
				return ErrInvalidStatus
			}
			apply(&req)
			r.requests[i] = req
			return nil
		}
	}
	return ErrNotFound
}

func cloneRequest(req Request) Request {
	out := req
	out.Images = append([]Image(nil), req.Images...)
	if req.ExchangeOrderID != nil {
		id := *req.ExchangeOrderID
		out.ExchangeOrderID = &id
	}
	return out
}
