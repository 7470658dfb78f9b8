package order

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mallgo/mall-backend/internal/address"
	"github.com/mallgo/mall-backend/internal/coupon"
	"github.com/mallgo/mall-backend/internal/product"
	"github.com/mallgo/mall-backend/internal/user"
)

type Handler struct {
	service *Service
}

type payRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type shipRequest struct {
	ShippingNo      string `json:"shippingNo"`
	ShippingCompany string `json:"shippingCompany"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.create)
	app.Get("/api/v1/orders", h.list)
	app.Get("/api/v1/orders/:id", h.get)
	app.Post("/api/v1/orders/:id/pay", h.pay)
	app.Post("/api/v1/orders/:id/ship", h.ship)
	app.Post("/api/v1/orders/:id/confirm-receive", h.confirmReceive)
	app.Post("/api/v1/orders/:id/cancel", h.cancel)
	app.Get("/api/v1/orders/:id/shipping-info", h.shippingInfo)
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(userID, *payload)
	if err != nil {
		return createError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) list(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var status *int
	if v := c.QueryInt("status", -1); v >= 0 {
		status = &v
	}

	orders, err := h.service.ListByUser(userID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	o, err := h.service.GetOwned(userID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}
	return c.JSON(o)
}

func (h *Handler) pay(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(payRequest)
	c.BodyParser(payload) // body is optional

	o, err := h.service.Pay(userID, id, payload.PaymentMethod)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) ship(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(shipRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ShippingNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shippingNo is required"})
	}

	o, err := h.service.Ship(userID, id, payload.ShippingNo, payload.ShippingCompany)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) confirmReceive(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	o, err := h.service.ConfirmReceive(userID, id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	o, err := h.service.Cancel(userID, id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) shippingInfo(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	info, err := h.service.ShippingInfo(userID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}
	return c.JSON(info)
}

func createError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrEmptyOrder, ErrCartMismatch, ErrInvalidPaymentMethod:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case ErrInsufficientStock, product.ErrInsufficientStock, product.ErrInvalidQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "insufficient stock"})
	case product.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case address.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "address not found"})
	case coupon.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "coupon not found"})
	case coupon.ErrAlreadyUsed, coupon.ErrNotApplicable:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}

func transitionError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	case ErrInvalidStatus:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "order is not in the required status"})
	case ErrInvalidPaymentMethod:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid payment method"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
