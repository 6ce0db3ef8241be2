// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/app/middleware"
	businessflow "github.com/kubousky/dotmap/business_flow"
)

// DotHandlerInterface defines the contract for dot handlers
type DotHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	UploadImage(c fiber.Ctx) error
	DownloadImage(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// DotHandler handles dot-related HTTP requests
type DotHandler struct {
	dotFlow   businessflow.DotFlow
	imageFlow businessflow.DotImageFlow
	validator *validator.Validate
}

// NewDotHandler creates a new dot handler
func NewDotHandler(dotFlow businessflow.DotFlow, imageFlow businessflow.DotImageFlow) *DotHandler {
	return &DotHandler{
		dotFlow:   dotFlow,
		imageFlow: imageFlow,
		validator: validator.New(),
	}
}

// List returns the caller's dots. The tag query parameter holds a comma
// separated list of tag ids; a dot matches when it carries any of them.
func (h *DotHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	tagIDs, err := businessflow.ParseTagIDs(c.Query("tag"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "tag must be a comma-separated list of ids", "INVALID_TAG_FILTER", nil)
	}

	req := dto.ListDotsRequest{TagIDs: tagIDs}

	result, err := h.dotFlow.ListDots(createRequestContext(c, "/api/dot/dots/"), userID, &req)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot listing failed", "DOT_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dots retrieved successfully", result)
}

// Create stores a new dot owned by the caller
func (h *DotHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateDotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.dotFlow.CreateDot(createRequestContext(c, "/api/dot/dots/"), userID, &req, metadata)
	if err != nil {
		if businessflow.IsForeignTag(err) {
			return errorResponse(c, fiber.StatusBadRequest, "One or more tags do not exist", "FOREIGN_TAG", nil)
		}
		if businessflow.IsValidationError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Dot validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot creation failed", "DOT_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Dot created successfully", result)
}

// Get returns the detail view of one of the caller's dots
func (h *DotHandler) Get(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	dotID, err := parseDotID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dot id", "INVALID_DOT_ID", nil)
	}

	result, err := h.dotFlow.GetDot(createRequestContext(c, "/api/dot/dots/:id/"), userID, dotID)
	if err != nil {
		if businessflow.IsDotNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Dot not found", "DOT_NOT_FOUND", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot fetch failed", "DOT_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dot retrieved successfully", result)
}

// Update applies a partial or full update to one of the caller's dots.
// PUT and PATCH share this handler; fields absent from the body keep
// their stored values either way.
func (h *DotHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	dotID, err := parseDotID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dot id", "INVALID_DOT_ID", nil)
	}

	var req dto.UpdateDotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.dotFlow.UpdateDot(createRequestContext(c, "/api/dot/dots/:id/"), userID, dotID, &req, metadata)
	if err != nil {
		if businessflow.IsDotNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Dot not found", "DOT_NOT_FOUND", nil)
		}
		if businessflow.IsForeignTag(err) {
			return errorResponse(c, fiber.StatusBadRequest, "One or more tags do not exist", "FOREIGN_TAG", nil)
		}
		if businessflow.IsValidationError(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Dot validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot update failed", "DOT_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Dot updated successfully", result)
}

// Delete removes one of the caller's dots
func (h *DotHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	dotID, err := parseDotID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dot id", "INVALID_DOT_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err = h.dotFlow.DeleteDot(createRequestContext(c, "/api/dot/dots/:id/"), userID, dotID, metadata)
	if err != nil {
		if businessflow.IsDotNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Dot not found", "DOT_NOT_FOUND", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot deletion failed", "DOT_DELETE_FAILED", nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage replaces the image of one of the caller's dots. The payload
// arrives as multipart form data under the image field.
func (h *DotHandler) UploadImage(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	dotID, err := parseDotID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dot id", "INVALID_DOT_ID", nil)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return errorResponse(c, fiber.StatusBadRequest, "image is required", "INVALID_IMAGE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid image", "INVALID_IMAGE", err.Error())
	}
	defer file.Close()

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.imageFlow.AttachImage(createRequestContext(c, "/api/dot/dots/:id/upload-image/"), userID, dotID, file, fileHeader.Filename, metadata)
	if err != nil {
		if businessflow.IsDotNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Dot not found", "DOT_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidImage(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Payload is not a valid image", "INVALID_IMAGE", nil)
		}
		if businessflow.IsImageTooLarge(err) {
			return errorResponse(c, fiber.StatusRequestEntityTooLarge, "Image exceeds the size limit", "IMAGE_TOO_LARGE", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Image attach failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Image attach failed", "IMAGE_ATTACH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Image uploaded successfully", result)
}

// DownloadImage serves the stored image blob of one of the caller's dots
func (h *DotHandler) DownloadImage(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	dotID, err := parseDotID(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid dot id", "INVALID_DOT_ID", nil)
	}

	filename, contentType, data, err := h.imageFlow.DownloadImage(createRequestContext(c, "/api/dot/dots/:id/image/"), userID, dotID)
	if err != nil {
		if businessflow.IsDotNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Image not found", "IMAGE_NOT_FOUND", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Image fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Image fetch failed", "IMAGE_FETCH_FAILED", nil)
	}

	if contentType != "" {
		c.Set("Content-Type", contentType)
	}
	c.Set("Content-Disposition", "inline; filename="+filename)
	return c.Send(data)
}

// Export returns the caller's whole catalog as an xlsx download
func (h *DotHandler) Export(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	filename, data, err := h.dotFlow.ExportDots(createRequestContext(c, "/api/dot/dots/export/"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Dot export failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Dot export failed", "DOT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func parseDotID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
