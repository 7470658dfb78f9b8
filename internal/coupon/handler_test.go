package coupon

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func activeCoupon(id int) Coupon {
	return Coupon{
		ID:        id,
		Name:      "Welcome",
		Type:      TypeFixed,
		Amount:    500,
		MinAmount: 2000,
		StartTime: "2020-01-01T00:00:00Z",
		EndTime:   "2099-01-01T00:00:00Z",
		IsActive:  true,
	}
}

func makeCouponApp(seed []Coupon) (*fiber.App, *Service) {
	service := NewService(NewInMemoryRepository(seed))
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
	handler.RegisterPublicRoutes(app)
	handler.RegisterProtectedRoutes(app)
	return app, service
}

func TestClaimOncePerUser(t *testing.T) {
	app, _ := makeCouponApp([]Coupon{activeCoupon(1)})

	req := httptest.NewRequest("POST", "/api/v1/coupons/1/claim", nil)
	req.Header.Set("X-User-ID", "7")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on first claim, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("POST", "/api/v1/coupons/1/claim", nil)
	req2.Header.Set("X-User-ID", "7")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 on repeat claim, got %d", res2.StatusCode)
	}

	// a different user may still claim
	req3 := httptest.NewRequest("POST", "/api/v1/coupons/1/claim", nil)
	req3.Header.Set("X-User-ID", "8")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("other user's claim failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for other user, got %d", res3.StatusCode)
	}
}

func TestClaimOutsideWindowRejected(t *testing.T) {
	expired := activeCoupon(1)
	expired.EndTime = "2021-01-01T00:00:00Z"
	inactive := activeCoupon(2)
	inactive.IsActive = false
	app, _ := makeCouponApp([]Coupon{expired, inactive})

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest("POST", "/api/v1/coupons/"+id+"/claim", nil)
		req.Header.Set("X-User-ID", "7")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("claim failed: %v", err)
		}
		if res.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("expected 400 claiming coupon %s, got %d", id, res.StatusCode)
		}
	}
}

func TestUseIsSingleShot(t *testing.T) {
	app, service := makeCouponApp([]Coupon{activeCoupon(1)})

	uc, err := service.Claim(7, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	path := "/api/v1/user-coupons/" + strconv.Itoa(uc.ID) + "/use"

	req := httptest.NewRequest("POST", path, nil)
	req.Header.Set("X-User-ID", "7")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("use failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on first use, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("POST", path, nil)
	req2.Header.Set("X-User-ID", "7")
	res2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("second use failed: %v", err)
	}
	if res2.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 on second use, got %d", res2.StatusCode)
	}

	// someone else's coupon reads as not found
	other, err := service.Claim(8, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	req3 := httptest.NewRequest("POST", "/api/v1/user-coupons/"+strconv.Itoa(other.ID)+"/use", nil)
	req3.Header.Set("X-User-ID", "7")
	res3, err := app.Test(req3)
	if err != nil {
		t.Fatalf("foreign use failed: %v", err)
	}
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 using a foreign coupon, got %d", res3.StatusCode)
	}
}

func TestListMineFiltersByStatus(t *testing.T) {
	app, service := makeCouponApp([]Coupon{activeCoupon(1), activeCoupon(2)})

	first, _ := service.Claim(7, 1)
	if _, err := service.Claim(7, 2); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := service.Use(7, first.ID); err != nil {
		t.Fatalf("use failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/coupons/mine?status=0", nil)
	req.Header.Set("X-User-ID", "7")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("list mine failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if strings.Count(string(b), "userCouponId") != 1 {
		t.Fatalf("expected exactly one unused coupon: %s", string(b))
	}
}

func TestValidateForOrder(t *testing.T) {
	_, service := makeCouponApp([]Coupon{activeCoupon(1)})
	uc, err := service.Claim(7, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := service.ValidateForOrder(7, uc.ID, 1500); err != ErrNotApplicable {
		t.Fatalf("below-minimum total should be rejected, got %v", err)
	}

	d, err := service.ValidateForOrder(7, uc.ID, 2500)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if d != 500 {
		t.Fatalf("expected 500 discount, got %d", d)
	}

	if _, err := service.ValidateForOrder(8, uc.ID, 2500); err != ErrNotFound {
		t.Fatalf("foreign coupon should be hidden, got %v", err)
	}

	if err := service.Use(7, uc.ID); err != nil {
		t.Fatalf("use failed: %v", err)
	}
	if _, err := service.ValidateForOrder(7, uc.ID, 2500); err != ErrAlreadyUsed {
		t.Fatalf("spent coupon should be rejected, got %v", err)
	}
}
