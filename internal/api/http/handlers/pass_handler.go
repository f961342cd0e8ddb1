package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pass-service/internal/api/dto"
	"github.com/spec-kit/pass-service/internal/service"
)

// PassHandler serves the participant's digital pass record.
type PassHandler struct {
	lifecycle *service.LifecycleService
}

// NewPassHandler constructs handler.
func NewPassHandler(lifecycle *service.LifecycleService) *PassHandler {
	return &PassHandler{lifecycle: lifecycle}
}

// Get handles GET /pass/:email.
func (h *PassHandler) Get(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		email = c.Params("email")
	}

	user, err := h.lifecycle.GetPass(c.Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewUserResponse(user)})
}
