package order

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mallgo/mall-backend/internal/address"
	"github.com/mallgo/mall-backend/internal/cart"
	"github.com/mallgo/mall-backend/internal/coupon"
	"github.com/mallgo/mall-backend/internal/product"
)

var (
	ErrEmptyOrder           = errors.New("order has no items")
	ErrCartMismatch         = errors.New("order items do not match the cart")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// ShippingFee is the flat delivery fee charged per order, in cents.
const ShippingFee int64 = 1000

var paymentMethods = map[string]bool{
	"alipay":      true,
	"wechat":      true,
	"credit_card": true,
}

// RequestedItem is one line of a checkout request.
type RequestedItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CreateRequest describes a checkout: which cart lines to buy, where to ship
// and how to pay.
type CreateRequest struct {
	Items         []RequestedItem `json:"items"`
	AddressID     int             `json:"addressId"`
	UserCouponID  *int            `json:"userCouponId"`
	PaymentMethod string          `json:"paymentMethod"`
}

type Service struct {
	repo      Repository
	products  *product.Service
	carts     *cart.Service
	addresses *address.Service
	coupons   *coupon.Service
}

func NewService(repo Repository, products *product.Service, carts *cart.Service, addresses *address.Service, coupons *coupon.Service) *Service {
	return &Service{repo: repo, products: products, carts: carts, addresses: addresses, coupons: coupons}
}

// Create turns cart lines into an order. Every requested line must match a
// current cart row exactly; prices are recomputed from the catalog rather
// than trusted from the client.
func (s *Service) Create(userID int, req CreateRequest) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !paymentMethods[req.PaymentMethod] {
		return Order{}, ErrInvalidPaymentMethod
	}

	userCart, err := s.carts.Get(userID)
	if err != nil {
		return Order{}, err
	}
	inCart := make(map[int]int, len(userCart.Items))
	for _, item := range userCart.Items {
		inCart[item.ProductID] = item.Quantity
	}
	seen := make(map[int]bool, len(req.Items))
	for _, item := range req.Items {
		// a repeated product would buy the carted quantity twice
		if seen[item.ProductID] || inCart[item.ProductID] != item.Quantity {
			return Order{}, ErrCartMismatch
		}
		seen[item.ProductID] = true
	}

	addr, err := s.addresses.GetOwned(userID, req.AddressID)
	if err != nil {
		return Order{}, err
	}

	ids := make([]int, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return Order{}, err
	}
	byID := make(map[int]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total int64
	items := make([]Item, 0, len(req.Items))
	for _, reqItem := range req.Items {
		p, ok := byID[reqItem.ProductID]
		if !ok {
			return Order{}, product.ErrNotFound
		}
		if err := product.CheckStock(p, reqItem.Quantity); err != nil {
			return Order{}, err
		}
		line := Item{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductImage: p.CoverImage(),
			Price:        p.Price,
			Quantity:     reqItem.Quantity,
			TotalPrice:   p.Price * int64(reqItem.Quantity),
		}
		total += line.TotalPrice
		items = append(items, line)
	}

	var discount int64
	if req.UserCouponID != nil {
		discount, err = s.coupons.ValidateForOrder(userID, *req.UserCouponID, total)
		if err != nil {
			return Order{}, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	o := Order{
		OrderNo:         newOrderNo(),
		UserID:          userID,
		Status:          StatusPendingPayment,
		TotalAmount:     total,
		DiscountAmount:  discount,
		ShippingFee:     ShippingFee,
		FinalAmount:     total - discount + ShippingFee,
		PaymentMethod:   req.PaymentMethod,
		Receiver:        addr.Receiver,
		ReceiverPhone:   addr.Phone,
		ReceiverAddress: formatAddress(addr),
		UserCouponID:    req.UserCouponID,
		CreatedAt:       now,
		Items:           items,
	}

	return s.repo.Create(o, ids)
}

// CreateExchange builds a replacement order for an approved exchange. The
// line keeps the price the customer originally paid and inherits the original
// order's discount ratio; no new shipping fee is charged.
func (s *Service) CreateExchange(original Order, productID, quantity int) (Order, error) {
	var line *Item
	for i := range original.Items {
		if original.Items[i].ProductID == productID {
			line = &original.Items[i]
			break
		}
	}
	if line == nil {
		return Order{}, ErrNotFound
	}

	total := line.Price * int64(quantity)
	var discount int64
	if original.TotalAmount > 0 {
		discount = total * original.DiscountAmount / original.TotalAmount
	}

	o := Order{
		OrderNo:         newOrderNo(),
		UserID:          original.UserID,
		Status:          StatusPendingPayment,
		TotalAmount:     total,
		DiscountAmount:  discount,
		ShippingFee:     0,
		FinalAmount:     total - discount,
		PaymentMethod:   original.PaymentMethod,
		Receiver:        original.Receiver,
		ReceiverPhone:   original.ReceiverPhone,
		ReceiverAddress: original.ReceiverAddress,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		Items: []Item{{
			ProductID:    productID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			Price:        line.Price,
			Quantity:     quantity,
			TotalPrice:   total,
		}},
	}

	return s.repo.Create(o, nil)
}

func (s *Service) ListByUser(userID int, status *int) ([]Order, error) {
	return s.repo.ListByUser(userID, status)
}

func (s *Service) GetOwned(userID, id int) (Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// Pay moves a pending-payment order to pending shipment and records the
// payment transaction number.
func (s *Service) Pay(userID, id int, paymentMethod string) (Order, error) {
	o, err := s.GetOwned(userID, id)
	if err != nil {
		return Order{}, err
	}

	if paymentMethod == "" {
		paymentMethod = o.PaymentMethod
	}
	if !paymentMethods[paymentMethod] {
		return Order{}, ErrInvalidPaymentMethod
	}

	paymentNo := "PAY-" + uuid.NewString()
	paymentTime := time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.Pay(id, paymentMethod, paymentNo, paymentTime); err != nil {
		return Order{}, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) Ship(userID, id int, shippingNo, shippingCompany string) (Order, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Order{}, err
	}
	if err := s.repo.Ship(id, shippingNo, shippingCompany); err != nil {
		return Order{}, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ConfirmReceive(userID, id int) (Order, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Order{}, err
	}
	completeTime := time.Now().UTC().Format(time.RFC3339)
	if err := s.repo.ConfirmReceive(id, completeTime); err != nil {
		return Order{}, err
	}
	return s.repo.GetByID(id)
}

// Cancel voids a pending-payment order and returns its stock.
func (s *Service) Cancel(userID, id int) (Order, error) {
	if _, err := s.GetOwned(userID, id); err != nil {
		return Order{}, err
	}
	if err := s.repo.Cancel(id); err != nil {
		return Order{}, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ShippingInfo(userID, id int) (ShippingInfo, error) {
	o, err := s.GetOwned(userID, id)
	if err != nil {
		return ShippingInfo{}, err
	}
	return ShippingInfo{
		OrderNo:         o.OrderNo,
		Status:          o.Status,
		ShippingNo:      o.ShippingNo,
		ShippingCompany: o.ShippingCompany,
		Receiver:        o.Receiver,
		ReceiverPhone:   o.ReceiverPhone,
		ReceiverAddress: o.ReceiverAddress,
	}, nil
}

func newOrderNo() string {
	return fmt.Sprintf("ORDER%d%04d", time.Now().Unix(), rand.Intn(10000))
}

func formatAddress(a address.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Province, a.City, a.District, a.Detail} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
