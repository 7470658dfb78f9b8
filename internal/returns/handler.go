package returns

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mallgo/mall-backend/internal/order"
	"github.com/mallgo/mall-backend/internal/user"
)

type Handler struct {
	service *Service
}

type shippingRequest struct {
	ShippingNo      string `json:"shippingNo"`
	ShippingCompany string `json:"shippingCompany"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/returns", h.create)
	app.Get("/api/v1/returns", h.list)
	app.Get("/api/v1/returns/:id", h.get)
	app.Post("/api/v1/returns/:id/cancel", h.cancel)
	app.Get("/api/v1/returns/:id/progress", h.progress)
	app.Post("/api/v1/returns/:id/shipping", h.updateShipping)
	// review transitions, driven by the support tooling
	app.Post("/api/v1/returns/:id/approve", h.approve)
	app.Post("/api/v1/returns/:id/reject", h.reject)
	app.Post("/api/v1/returns/:id/complete", h.complete)
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
	switch err {
	case nil:
	case order.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	case ErrOrderNotReturnable, ErrProductNotInOrder, ErrQuantityExceeds, ErrInvalidType:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
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

	requests, err := h.service.ListByUser(userID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(requests)
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.GetOwned(userID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "return request not found"})
	}
	return c.JSON(req)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.Cancel(userID, id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(req)
}

func (h *Handler) progress(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.GetOwned(userID, id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "return request not found"})
	}
	return c.JSON(fiber.Map{"returnNo": req.ReturnNo, "status": req.Status, "steps": Progress(req)})
}

func (h *Handler) updateShipping(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	payload := new(shippingRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ShippingNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shippingNo is required"})
	}

	req, err := h.service.UpdateShipping(userID, id, payload.ShippingNo, payload.ShippingCompany)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(req)
}

func (h *Handler) approve(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.Approve(id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(req)
}

func (h *Handler) reject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.Reject(id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(req)
}

func (h *Handler) complete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid return id"})
	}

	req, err := h.service.Complete(id)
	if err != nil {
		return transitionError(c, err)
	}
	return c.JSON(req)
}

func transitionError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "return request not found"})
	case ErrInvalidStatus:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "return request is not in the required status"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
