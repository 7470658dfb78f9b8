package review

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mallgo/mall-backend/internal/product"
	"github.com/mallgo/mall-backend/internal/user"
)

type Handler struct {
	service *Service
}

type createRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products/:id/reviews", h.list)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products/:id/reviews", h.create)
}

func (h *Handler) list(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	reviews, err := h.service.ListByProduct(productID)
	if err != nil {
		if err == product.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(reviews)
}

func (h *Handler) create(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	payload := new(createRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	created, err := h.service.Create(Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    payload.Rating,
		Content:   payload.Content,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	switch err {
	case nil:
	case ErrInvalidRating:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "rating must be between 1 and 5"})
	case product.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
