package coupon

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mallgo/mall-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/coupons", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/coupons/:id/claim", h.claim)
	app.Get("/api/v1/coupons/mine", h.listMine)
	app.Post("/api/v1/user-coupons/:id/use", h.use)
}

func (h *Handler) list(c *fiber.Ctx) error {
	onlyActive := c.Query("status") == "active"
	coupons, err := h.service.List(onlyActive)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(coupons)
}

func (h *Handler) claim(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	couponID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid coupon id"})
	}

	uc, err := h.service.Claim(userID, couponID)
	switch err {
	case nil:
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "coupon not found"})
	case ErrNotClaimable:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "coupon is not claimable"})
	case ErrAlreadyClaimed:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "coupon already claimed"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(uc)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	var status *int
	if v := c.QueryInt("status", -1); v >= 0 {
		status = &v
	}

	userCoupons, err := h.service.ListUserCoupons(userID, status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(userCoupons)
}

func (h *Handler) use(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	userCouponID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid user coupon id"})
	}

	switch err := h.service.Use(userID, userCouponID); err {
	case nil:
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "coupon not found"})
	case ErrAlreadyUsed:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "coupon already used"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Coupon used"})
}
