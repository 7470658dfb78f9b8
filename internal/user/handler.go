package user

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/mallgo/mall-backend/internal/verify"
)

const resetPurpose = "password-reset"

// CodeVerifier issues and checks one-time verification codes.
type CodeVerifier interface {
	Send(ctx context.Context, purpose, target string) error
	Confirm(ctx context.Context, purpose, target, code string) error
}

type Handler struct {
	service *Service
	codes   CodeVerifier
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type profileUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

func NewHandler(service *Service, codes CodeVerifier) *Handler {
	return &Handler{service: service, codes: codes}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/users/sign-up", h.register)
	app.Post("/api/v1/users/sign-in", h.login)
	app.Post("/api/v1/users/password-reset/request", h.requestPasswordReset)
	app.Post("/api/v1/users/password-reset/confirm", h.confirmPasswordReset)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/users/profile", h.getProfile)
	// partial payloads are accepted, so PUT behaves the same as PATCH
	app.Put("/api/v1/users/profile", h.updateProfile)
	app.Patch("/api/v1/users/profile", h.updateProfile)
	app.Post("/api/v1/users/change-password", h.changePassword)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "username, email and password are required"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Register(User{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		Phone:     payload.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	})
	switch err {
	case nil:
	case ErrEmailExists:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "email already exists"})
	case ErrUsernameExists:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "username already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(sanitizeUser(created))
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    sanitizeUser(user),
		"token":   signed,
	})
}

func (h *Handler) requestPasswordReset(c *fiber.Ctx) error {
	payload := new(resetRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}

	// do not reveal whether the address is registered
	if _, err := h.service.GetByEmail(payload.Email); err == nil {
		if err := h.codes.Send(c.Context(), resetPurpose, payload.Email); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "If the address is registered, a code has been sent"})
}

func (h *Handler) confirmPasswordReset(c *fiber.Ctx) error {
	payload := new(resetConfirmRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" || payload.Code == "" || payload.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email, code and newPassword are required"})
	}

	if err := h.codes.Confirm(c.Context(), resetPurpose, payload.Email, payload.Code); err != nil {
		if err == verify.ErrInvalidCode {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid or expired code"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.service.ResetPassword(payload.Email, payload.NewPassword, now); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Password reset"})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	user, err := h.service.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}

	return c.JSON(sanitizeUser(user))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(profileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	upd := User{UpdatedAt: time.Now().UTC().Format(time.RFC3339)}
	if payload.Username != nil {
		upd.Username = *payload.Username
	}
	if payload.Email != nil {
		upd.Email = *payload.Email
	}
	if payload.Phone != nil {
		upd.Phone = *payload.Phone
	}

	updated, err := h.service.UpdateProfile(userID, upd)
	switch err {
	case nil:
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case ErrEmailExists:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "email already exists"})
	case ErrUsernameExists:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "username already exists"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(sanitizeUser(updated))
}

func (h *Handler) changePassword(c *fiber.Ctx) error {
	userID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(changePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.OldPassword == "" || payload.NewPassword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "oldPassword and newPassword are required"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	switch err := h.service.ChangePassword(userID, payload.OldPassword, payload.NewPassword, now); err {
	case nil:
	case ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	case ErrWrongPassword:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "wrong password"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Password changed"})
}

// GetUserIDFromCtx extracts the user_id claim from the JWT token stored
// in `c.Locals("user")`. Several packages need this, so it is exported here.
func GetUserIDFromCtx(c *fiber.Ctx) (int, error) {
	u := c.Locals("user")
	if u == nil {
		return 0, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	if raw, ok := claims["user_id"]; ok {
		switch v := raw.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case string:
			id, err := strconv.Atoi(v)
			if err != nil {
				return 0, fiber.ErrUnauthorized
			}
			return id, nil
		default:
			return 0, fiber.ErrUnauthorized
		}
	}
	return 0, fiber.ErrUnauthorized
}

func sanitizeUser(user User) User {
	user.Password = ""
	return user
}
