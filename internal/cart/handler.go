package cart

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mallgo/mall-backend/internal/product"
	"github.com/mallgo/mall-backend/internal/user"
)

type Handler struct {
	service *Service
}

type itemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type selectRequest struct {
	ProductID int  `json:"productId"`
	Selected  bool `json:"selected"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.get)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Put("/api/v1/cart/items", h.updateItem)
	app.Put("/api/v1/cart/items/select", h.selectItem)
	app.Delete("/api/v1/cart/items/:productId", h.removeItem)
	app.Delete("/api/v1/cart", h.clear)
}

func (h *Handler) get(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	cart, err := h.service.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(cart)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	item, err := h.service.AddItem(userID, payload.ProductID, payload.Quantity)
	if err != nil {
		return itemError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(itemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.UpdateItemQuantity(userID, payload.ProductID, payload.Quantity); err != nil {
		return itemError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart item updated"})
}

func (h *Handler) selectItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(selectRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := h.service.SelectItem(userID, payload.ProductID, payload.Selected); err != nil {
		return itemError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart item updated"})
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	productID, err := c.ParamsInt("productId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.RemoveItem(userID, productID); err != nil {
		return itemError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart item removed"})
}

func (h *Handler) clear(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := h.service.Clear(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

func itemError(c *fiber.Ctx, err error) error {
	switch err {
	case product.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case product.ErrInvalidQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity must be positive"})
	case product.ErrInsufficientStock:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "insufficient stock"})
	case ErrItemNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "cart item not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
