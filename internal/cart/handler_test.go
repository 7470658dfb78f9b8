package cart

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/mallgo/mall-backend/internal/product"
)

func makeCartApp() (*fiber.App, *Service) {
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dog Food", Price: 2500, Stock: 5, IsActive: true},
		{ID: 2, Name: "Cat Tree", Price: 9900, Stock: 2, IsActive: true},
	}))
	service := NewService(NewInMemoryRepository(), products)
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
	return app, service
}

func fetchCart(t *testing.T, app *fiber.App, userID string) Cart {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", userID)
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on get cart, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		t.Fatalf("decode cart failed: %v (%s)", err, string(b))
	}
	return c
}

func TestAddItemAccumulatesAndJoinsProduct(t *testing.T) {
	app, _ := makeCartApp()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":2}`))
		req.Header.Set("X-User-ID", "7")
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("add item failed: %v", err)
		}
		if res.StatusCode != fiber.StatusCreated {
			t.Fatalf("expected 201 on add, got %d", res.StatusCode)
		}
	}

	c := fetchCart(t, app, "7")
	if len(c.Items) != 1 {
		t.Fatalf("expected one accumulated line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", c.Items[0].Quantity)
	}
	if c.Items[0].Product == nil || c.Items[0].Product.Name != "Dog Food" {
		t.Fatalf("product data not joined: %+v", c.Items[0])
	}

	// one more add would exceed stock 5
	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":2}`))
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 when exceeding stock, got %d", res.StatusCode)
	}
}

func TestUpdateSelectRemoveClear(t *testing.T) {
	app, service := makeCartApp()

	if _, err := service.AddItem(7, 1, 1); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}
	if _, err := service.AddItem(7, 2, 1); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}

	// update quantity
	req := httptest.NewRequest("PUT", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":3}`))
	req.Header.Set("X-User-ID", "7")
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on update, got %d", res.StatusCode)
	}

	// quantity beyond stock is rejected
	req2 := httptest.NewRequest("PUT", "/api/v1/cart/items", strings.NewReader(`{"productId":2,"quantity":3}`))
	req2.Header.Set("X-User-ID", "7")
	req2.Header.Set("Content-Type", "application/json")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 updating beyond stock, got %d", res2.StatusCode)
	}

	// deselect an item
	req3 := httptest.NewRequest("PUT", "/api/v1/cart/items/select", strings.NewReader(`{"productId":2,"selected":false}`))
	req3.Header.Set("X-User-ID", "7")
	req3.Header.Set("Content-Type", "application/json")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on select, got %d", res3.StatusCode)
	}

	c := fetchCart(t, app, "7")
	for _, item := range c.Items {
		if item.ProductID == 1 && item.Quantity != 3 {
			t.Fatalf("quantity update not applied: %+v", item)
		}
		if item.ProductID == 2 && item.Selected {
			t.Fatalf("deselect not applied: %+v", item)
		}
	}

	// remove one item
	req4 := httptest.NewRequest("DELETE", "/api/v1/cart/items/2", nil)
	req4.Header.Set("X-User-ID", "7")
	res4, err := app.Test(req4)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on remove, got %d", res4.StatusCode)
	}
	if c := fetchCart(t, app, "7"); len(c.Items) != 1 {
		t.Fatalf("expected one item after remove, got %d", len(c.Items))
	}

	// removing a missing item is a 404
	req5 := httptest.NewRequest("DELETE", "/api/v1/cart/items/2", nil)
	req5.Header.Set("X-User-ID", "7")
	res5, err := app.Test(req5)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if res5.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 removing missing item, got %d", res5.StatusCode)
	}

	// clear
	req6 := httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req6.Header.Set("X-User-ID", "7")
	res6, err := app.Test(req6)
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if res6.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", res6.StatusCode)
	}
	if c := fetchCart(t, app, "7"); len(c.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(c.Items))
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	app, service := makeCartApp()

	if _, err := service.AddItem(7, 1, 1); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}

	other := fetchCart(t, app, "8")
	if len(other.Items) != 0 {
		t.Fatalf("new user's cart should be empty: %+v", other.Items)
	}
}
