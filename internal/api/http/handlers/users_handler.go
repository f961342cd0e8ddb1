package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pass-service/internal/api/dto"
	"github.com/spec-kit/pass-service/internal/domain"
	"github.com/spec-kit/pass-service/internal/service"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

// UsersHandler exposes admin review endpoints over participant records.
type UsersHandler struct {
	lifecycle *service.LifecycleService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(lifecycle *service.LifecycleService) *UsersHandler {
	return &UsersHandler{lifecycle: lifecycle}
}

// List handles GET /users. Admin records are excluded from the listing.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := parseIntQuery(c.Query("page"), 1)
	limit := parseIntQuery(c.Query("limit"), 25)

	users, pagination, _, err := h.lifecycle.ListUsers(c.Context(), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"count":      len(users),
		"pagination": pagination,
		"data":       dto.NewUserResponses(users),
	})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.lifecycle.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewUserResponse(user)})
}

// UpdateStatus handles PUT /users/:id/status.
func (h *UsersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.lifecycle.UpdateStatus(c.Context(), c.Params("id"), domain.UserStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewUserResponse(user)})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func parseIntQuery(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
