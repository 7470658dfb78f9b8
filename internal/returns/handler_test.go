package returns

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/mallgo/mall-backend/internal/address"
	"github.com/mallgo/mall-backend/internal/cart"
	"github.com/mallgo/mall-backend/internal/coupon"
	"github.com/mallgo/mall-backend/internal/order"
	"github.com/mallgo/mall-backend/internal/product"
)

type returnsFixture struct {
	app      *fiber.App
	service  *Service
	orders   *order.Service
	carts    *cart.Service
	coupons  *coupon.Service
	products *product.InMemoryRepository
}

func newReturnsFixture(t *testing.T) *returnsFixture {
	t.Helper()

	productRepo := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dog Food", Price: 2500, Stock: 10, IsActive: true},
		{ID: 2, Name: "Cat Tree", Price: 9900, Stock: 5, IsActive: true},
	})
	productService := product.NewService(productRepo)
	cartService := cart.NewService(cart.NewInMemoryRepository(), productService)
	addressService := address.NewService(address.NewInMemoryRepository([]address.Address{
		{ID: 1, UserID: 7, Receiver: "Jenny", Phone: "555", Detail: "1 Main St"},
	}))
	couponRepo := coupon.NewInMemoryRepository([]coupon.Coupon{{
		ID: 1, Name: "Welcome", Type: coupon.TypeFixed, Amount: 500, MinAmount: 2000,
		StartTime: "2020-01-01T00:00:00Z", EndTime: "2099-01-01T00:00:00Z", IsActive: true,
	}})
	couponService := coupon.NewService(couponRepo)

	orderRepo := order.NewInMemoryRepository(order.Collaborators{
		TakeStock:    productRepo.TakeStock,
		RestoreStock: productRepo.RestoreStock,
		PruneCart:    cartService.RemoveItems,
		MarkCouponUsed: func(userCouponID int, usedAt string) error {
			return couponRepo.MarkUsed(userCouponID, usedAt)
		},
	})
	orderService := order.NewService(orderRepo, productService, cartService, addressService, couponService)

	service := NewService(NewInMemoryRepository(), orderService)
	handler := NewHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": id}})
			}
		}
		return c.Next()
	})
	handler.RegisterProtectedRoutes(app)

	return &returnsFixture{
		app:      app,
		service:  service,
		orders:   orderService,
		carts:    cartService,
		coupons:  couponService,
		products: productRepo,
	}
}

// completedOrder walks an order through the full lifecycle so it becomes
// returnable. The order uses the 500-cent welcome coupon.
func (f *returnsFixture) completedOrder(t *testing.T) order.Order {
	t.Helper()

	uc, err := f.coupons.Claim(7, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if _, err := f.carts.AddItem(7, 1, 2); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}
	if _, err := f.carts.AddItem(7, 2, 1); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}

	created, err := f.orders.Create(7, order.CreateRequest{
		Items:         []order.RequestedItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		AddressID:     1,
		UserCouponID:  &uc.ID,
		PaymentMethod: "alipay",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.orders.Pay(7, created.ID, ""); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.orders.Ship(7, created.ID, "SF1", "SF"); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	done, err := f.orders.ConfirmReceive(7, created.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	return done
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, userID string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-User-ID", userID)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

func TestCreateReturnComputesRefund(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	body := `{"orderId":` + strconv.Itoa(o.ID) + `,"productId":1,"type":1,"quantity":1,"reason":"damaged","images":["http://img/1.jpg"]}`
	status, b := doJSON(t, f.app, "POST", "/api/v1/returns", body, "7")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 on create, got %d: %s", status, string(b))
	}

	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if req.TotalAmount != 2500 {
		t.Fatalf("line total wrong: %d", req.TotalAmount)
	}
	// order total 14900, discount 500: the returned line carries
	// 2500*500/14900 = 83 cents of it
	if req.DiscountShare != 83 {
		t.Fatalf("discount share wrong: %d", req.DiscountShare)
	}
	if req.RefundAmount != 2500-83 {
		t.Fatalf("refund wrong: %d", req.RefundAmount)
	}
	if req.Status != StatusPending {
		t.Fatalf("new request should be pending: %d", req.Status)
	}
	if len(req.Images) != 1 || req.Images[0].URL != "http://img/1.jpg" {
		t.Fatalf("images not stored: %+v", req.Images)
	}
	if !strings.HasPrefix(req.ReturnNo, "RET") {
		t.Fatalf("return number format wrong: %s", req.ReturnNo)
	}
}

func TestCreateReturnPreconditions(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)
	id := strconv.Itoa(o.ID)

	// a second pending order that is not completed
	if _, err := f.carts.AddItem(7, 1, 1); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}
	pending, err := f.orders.Create(7, order.CreateRequest{
		Items:         []order.RequestedItem{{ProductID: 1, Quantity: 1}},
		AddressID:     1,
		PaymentMethod: "alipay",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	cases := []struct {
		name   string
		body   string
		user   string
		status int
	}{
		{"order not completed", `{"orderId":` + strconv.Itoa(pending.ID) + `,"productId":1,"type":1,"quantity":1,"reason":"x"}`, "7", fiber.StatusBadRequest},
		{"foreign order", `{"orderId":` + id + `,"productId":1,"type":1,"quantity":1,"reason":"x"}`, "9", fiber.StatusNotFound},
		{"product not in order", `{"orderId":` + id + `,"productId":99,"type":1,"quantity":1,"reason":"x"}`, "7", fiber.StatusBadRequest},
		{"quantity exceeds purchase", `{"orderId":` + id + `,"productId":1,"type":1,"quantity":3,"reason":"x"}`, "7", fiber.StatusBadRequest},
		{"bad type", `{"orderId":` + id + `,"productId":1,"type":9,"quantity":1,"reason":"x"}`, "7", fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		status, b := doJSON(t, f.app, "POST", "/api/v1/returns", tc.body, tc.user)
		if status != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, status, string(b))
		}
	}

	// one request per (order, product)
	good := `{"orderId":` + id + `,"productId":1,"type":1,"quantity":1,"reason":"x"}`
	if status, _ := doJSON(t, f.app, "POST", "/api/v1/returns", good, "7"); status != fiber.StatusCreated {
		t.Fatalf("expected 201 on first request, got %d", status)
	}
	if status, _ := doJSON(t, f.app, "POST", "/api/v1/returns", good, "7"); status != fiber.StatusConflict {
		t.Fatalf("expected 409 on duplicate request, got %d", status)
	}
}

func TestReturnLifecycle(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	created, err := f.service.Create(7, CreateRequest{
		OrderID: o.ID, ProductID: 1, Type: TypeRefund, Quantity: 1, Reason: "damaged",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := strconv.Itoa(created.ID)

	// shipping info before approval is rejected
	status, _ := doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/shipping", `{"shippingNo":"SF9"}`, "7")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 shipping a pending request, got %d", status)
	}

	// approve
	status, b := doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/approve", "", "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on approve, got %d: %s", status, string(b))
	}
	var approved Request
	json.Unmarshal(b, &approved)
	if approved.Status != StatusApproved || approved.ExchangeOrderID != nil {
		t.Fatalf("refund approval wrong: %+v", approved)
	}

	// cancelling an approved request is rejected
	status, _ = doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/cancel", "", "7")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 cancelling an approved request, got %d", status)
	}

	// now the customer can record the way back
	status, b = doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/shipping", `{"shippingNo":"SF9","shippingCompany":"SF"}`, "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 recording shipping, got %d: %s", status, string(b))
	}

	// complete
	status, b = doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/complete", "", "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on complete, got %d", status)
	}
	var done Request
	json.Unmarshal(b, &done)
	if done.Status != StatusCompleted {
		t.Fatalf("request not completed: %+v", done)
	}

	// completed requests cannot be approved again
	status, _ = doJSON(t, f.app, "POST", "/api/v1/returns/"+id+"/approve", "", "7")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 approving a completed request, got %d", status)
	}
}

func TestRejectAndCancel(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	first, err := f.service.Create(7, CreateRequest{OrderID: o.ID, ProductID: 1, Type: TypeRefund, Quantity: 1, Reason: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := f.service.Create(7, CreateRequest{OrderID: o.ID, ProductID: 2, Type: TypeRefund, Quantity: 1, Reason: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status, b := doJSON(t, f.app, "POST", "/api/v1/returns/"+strconv.Itoa(first.ID)+"/reject", "", "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on reject, got %d", status)
	}
	var rejected Request
	json.Unmarshal(b, &rejected)
	if rejected.Status != StatusRejected {
		t.Fatalf("request not rejected: %+v", rejected)
	}

	status, b = doJSON(t, f.app, "POST", "/api/v1/returns/"+strconv.Itoa(second.ID)+"/cancel", "", "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on cancel, got %d", status)
	}
	var cancelled Request
	json.Unmarshal(b, &cancelled)
	if cancelled.Status != StatusCancelled {
		t.Fatalf("request not cancelled: %+v", cancelled)
	}
}

func TestApproveExchangeCreatesLinkedOrder(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	created, err := f.service.Create(7, CreateRequest{
		OrderID: o.ID, ProductID: 2, Type: TypeExchange, Quantity: 1, Reason: "wrong size",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stockBefore, _ := f.products.GetByID(2)

	approved, err := f.service.Approve(created.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ExchangeOrderID == nil {
		t.Fatalf("exchange approval should link a new order: %+v", approved)
	}

	exchange, err := f.orders.GetOwned(7, *approved.ExchangeOrderID)
	if err != nil {
		t.Fatalf("exchange order not found: %v", err)
	}
	if exchange.Status != order.StatusPendingPayment {
		t.Fatalf("exchange order should await payment: %+v", exchange)
	}
	if exchange.TotalAmount != 9900 {
		t.Fatalf("exchange total wrong: %d", exchange.TotalAmount)
	}
	// 9900*500/14900 = 332 cents of the original discount carry over
	if exchange.DiscountAmount != 332 {
		t.Fatalf("exchange discount wrong: %d", exchange.DiscountAmount)
	}
	if exchange.ShippingFee != 0 {
		t.Fatalf("exchange should not charge shipping again: %d", exchange.ShippingFee)
	}
	if exchange.Receiver != o.Receiver || exchange.ReceiverAddress != o.ReceiverAddress {
		t.Fatalf("exchange should reuse the original delivery snapshot: %+v", exchange)
	}

	// replacement goods are reserved from stock
	stockAfter, _ := f.products.GetByID(2)
	if stockAfter.Stock != stockBefore.Stock-1 {
		t.Fatalf("exchange did not reserve stock: before %d after %d", stockBefore.Stock, stockAfter.Stock)
	}
}

// approveFailsRepo reports a concurrent state change when the approval is
// persisted, after the request was already read as pending.
type approveFailsRepo struct {
	Repository
}

func (r *approveFailsRepo) Approve(id int, exchangeOrderID *int) error {
	return ErrInvalidStatus
}

func TestApproveFailureVoidsExchangeOrder(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	service := NewService(&approveFailsRepo{Repository: NewInMemoryRepository()}, f.orders)
	created, err := service.Create(7, CreateRequest{
		OrderID: o.ID, ProductID: 2, Type: TypeExchange, Quantity: 1, Reason: "x",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stockBefore, _ := f.products.GetByID(2)

	if _, err := service.Approve(created.ID); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	// the spawned replacement order was voided and its stock returned
	stockAfter, _ := f.products.GetByID(2)
	if stockAfter.Stock != stockBefore.Stock {
		t.Fatalf("stock leaked: before %d after %d", stockBefore.Stock, stockAfter.Stock)
	}
	orders, _ := f.orders.ListByUser(7, nil)
	for _, spawned := range orders {
		if spawned.ID != o.ID && spawned.Status != order.StatusCancelled {
			t.Fatalf("orphan order left behind: %+v", spawned)
		}
	}
}

func TestProgressSteps(t *testing.T) {
	f := newReturnsFixture(t)
	o := f.completedOrder(t)

	created, err := f.service.Create(7, CreateRequest{OrderID: o.ID, ProductID: 1, Type: TypeRefund, Quantity: 1, Reason: "x"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id := strconv.Itoa(created.ID)

	status, b := doJSON(t, f.app, "GET", "/api/v1/returns/"+id+"/progress", "", "7")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on progress, got %d", status)
	}
	if !strings.Contains(string(b), "submitted") {
		t.Fatalf("progress missing steps: %s", string(b))
	}

	// foreign requests stay hidden
	status, _ = doJSON(t, f.app, "GET", "/api/v1/returns/"+id+"/progress", "", "9")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign request, got %d", status)
	}
}
