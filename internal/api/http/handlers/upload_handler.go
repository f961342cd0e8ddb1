package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pass-service/internal/service"
	apperrors "github.com/spec-kit/pass-service/pkg/util"
)

// UploadHandler exposes file upload and replacement endpoints.
type UploadHandler struct {
	lifecycle *service.LifecycleService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(lifecycle *service.LifecycleService) *UploadHandler {
	return &UploadHandler{lifecycle: lifecycle}
}

// UploadPhoto handles PUT /upload/users/:id/photo.
func (h *UploadHandler) UploadPhoto(c *fiber.Ctx) error {
	doc, err := readFormFile(c, "photo")
	if err != nil {
		return apperrors.NewValidationError("please upload a file", nil)
	}

	url, err := h.lifecycle.UpdatePhoto(c.Context(), c.Params("id"), *doc)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": url})
}

// ReplaceDocument handles PUT /upload/users/:id/documents/:type.
func (h *UploadHandler) ReplaceDocument(c *fiber.Ctx) error {
	doc, err := readFormFile(c, "document")
	if err != nil {
		return apperrors.NewValidationError("please upload a file", nil)
	}

	url, err := h.lifecycle.ReplaceDocument(c.Context(), c.Params("id"), c.Params("type"), *doc)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": url})
}

// DeleteFile handles DELETE /upload/:key.
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	if err := h.lifecycle.DeleteFile(c.Context(), c.Params("key")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{}})
}
