package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pass-service/internal/api/dto"
	"github.com/spec-kit/pass-service/internal/auth"
	"github.com/spec-kit/pass-service/internal/service"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

// AuthHandler exposes invitation, registration, and session endpoints.
type AuthHandler struct {
	lifecycle    *service.LifecycleService
	cookieSecure bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(lifecycle *service.LifecycleService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{lifecycle: lifecycle, cookieSecure: cookieSecure}
}

// Invite handles POST /auth/invite.
func (h *AuthHandler) Invite(c *fiber.Ctx) error {
	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}

	if err := h.lifecycle.InviteUser(c.Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": "invitation sent successfully"})
}

// VerifyInvite handles GET /auth/verify-invite/:token.
func (h *AuthHandler) VerifyInvite(c *fiber.Ctx) error {
	email, err := h.lifecycle.VerifyInvitation(c.Context(), c.Params("token"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"email": email}})
}

// Register handles POST /auth/register/:token (multipart form).
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	input := service.RegistrationInput{
		Name:         c.FormValue("name"),
		Password:     c.FormValue("password"),
		College:      c.FormValue("college"),
		AadharNumber: c.FormValue("aadharNumber"),
	}

	if doc, err := readFormFile(c, "aadharPhoto"); err == nil {
		input.AadharPhoto = doc
	}
	if doc, err := readFormFile(c, "collegeIdPhoto"); err == nil {
		input.CollegeIDPhoto = doc
	}

	token, err := h.lifecycle.RegisterWithToken(c.Context(), c.Params("token"), input)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"message": "registration successful, your account is pending admin approval",
	})
}

// Login handles POST /auth/login. Admin only in this deployment.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("please provide both email and password", nil)
	}

	_, token, exp, err := h.lifecycle.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token, exp)
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"data":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authorized to access this route")
	}

	user, err := h.lifecycle.Me(c.Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewUserResponse(user)})
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		h.lifecycle.Logout(c.Context(), principal)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
	})
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
	})
}

// readFormFile loads one multipart file into memory. Absence is reported as
// an error so callers can leave the document nil for the validator.
func readFormFile(c *fiber.Ctx, field string) (*service.DocumentUpload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return documentFromHeader(fileHeader)
}

func documentFromHeader(fileHeader *multipart.FileHeader) (*service.DocumentUpload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "unable to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "unable to read uploaded file")
	}

	return &service.DocumentUpload{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, nil
}
