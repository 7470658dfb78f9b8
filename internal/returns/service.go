package returns

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mallgo/mall-backend/internal/order"
)

var (
	ErrOrderNotReturnable = errors.New("only completed orders can be returned")
	ErrProductNotInOrder  = errors.New("product is not part of the order")
	ErrQuantityExceeds    = errors.New("return quantity exceeds purchased quantity")
	ErrInvalidType        = errors.New("invalid return type")
)

// CreateRequest is the payload for opening a return or exchange.
type CreateRequest struct {
	OrderID     int      `json:"orderId"`
	ProductID   int      `json:"productId"`
	Type        int      `json:"type"`
	Quantity    int      `json:"quantity"`
	Reason      string   `json:"reason"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

type Service struct {
	repo   Repository
	orders *order.Service
}

func NewService(repo Repository, orders *order.Service) *Service {
	return &Service{repo: repo, orders: orders}
}

// Create opens a request against one line of a completed order. The refund
// is the line value minus the share of the order discount that line carried.
func (s *Service) Create(userID int, payload CreateRequest) (Request, error) {
	if payload.Type != TypeRefund && payload.Type != TypeExchange {
		return Request{}, ErrInvalidType
	}

	o, err := s.orders.GetOwned(userID, payload.OrderID)
	if err != nil {
		return Request{}, err
	}
	if o.Status != order.StatusCompleted {
		return Request{}, ErrOrderNotReturnable
	}

	var line *order.Item
	for i := range o.Items {
		if o.Items[i].ProductID == payload.ProductID {
			line = &o.Items[i]
			break
		}
	}
	if line == nil {
		return Request{}, ErrProductNotInOrder
	}
	if payload.Quantity <= 0 || payload.Quantity > line.Quantity {
		return Request{}, ErrQuantityExceeds
	}

	total := line.Price * int64(payload.Quantity)
	var discountShare int64
	if o.TotalAmount > 0 {
		discountShare = total * o.DiscountAmount / o.TotalAmount
	}

	images := make([]Image, 0, len(payload.Images))
	for _, url := range payload.Images {
		images = append(images, Image{URL: url})
	}

	req := Request{
		ReturnNo:      newReturnNo(),
		OrderID:       o.ID,
		UserID:        userID,
		ProductID:     payload.ProductID,
		Type:          payload.Type,
		Reason:        payload.Reason,
		Description:   payload.Description,
		Quantity:      payload.Quantity,
		TotalAmount:   total,
		DiscountShare: discountShare,
		RefundAmount:  total - discountShare,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Images:        images,
	}

	return s.repo.Create(req)
}

func (s *Service) ListByUser(userID int, status *int) ([]Request, error) {
	return s.repo.ListByUser(userID, status)
}

func (s *Service) GetOwned(userID, id int) (Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return Request{}, err
	}
	if req.UserID != userID {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (s *Service) Cancel(userID, id int) (Request, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Request{}, err
	}
	if err := s.repo.Cancel(id); err != nil {
		return Request{}, err
	}
	return s.repo.GetByID(id)
}

// UpdateShipping records how the customer sent the goods back.
func (s *Service) UpdateShipping(userID, id int, shippingNo, shippingCompany string) (Request, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Request{}, err
	}
	if err := s.repo.UpdateShipping(id, shippingNo, shippingCompany); err != nil {
		return Request{}, err
	}
	return s.repo.GetByID(id)
}

// Approve accepts a pending request. Approving an exchange places a fresh
// pending-payment order for the replacement goods and links it to the
// request.
func (s *Service) Approve(id int) (Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return Request{}, err
	}
	if req.Status != StatusPending {
		return Request{}, ErrInvalidStatus
	}

	var exchangeOrderID *int
	if req.Type == TypeExchange {
		original, err := s.orders.GetOwned(req.UserID, req.OrderID)
		if err != nil {
			return Request{}, err
		}
		exchange, err := s.orders.CreateExchange(original, req.ProductID, req.Quantity)
		if err != nil {
			return Request{}, err
		}
		exchangeOrderID = &exchange.ID
	}

	if err := s.repo.Approve(id, exchangeOrderID); err != nil {
		// the request changed state underneath us; void the replacement
		// order so its reserved stock goes back
		if exchangeOrderID != nil {
			_, _ = s.orders.Cancel(req.UserID, *exchangeOrderID)
		}
		return Request{}, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) Reject(id int) (Request, error) {
	if err := s.repo.Reject(id); err != nil {
		return Request{}, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) Complete(id int) (Request, error) {
	if err := s.repo.Complete(id); err != nil {
		return Request{}, err
	}
	return s.repo.GetByID(id)
}

func newReturnNo() string {
	return fmt.Sprintf("RET%d%04d", time.Now().Unix(), rand.Intn(10000))
}
