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

// TagHandlerInterface defines the contract for tag handlers
type TagHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tagFlow   businessflow.TagFlow
	validator *validator.Validate
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagFlow businessflow.TagFlow) *TagHandler {
	return &TagHandler{
		tagFlow:   tagFlow,
		validator: validator.New(),
	}
}

// List returns the caller's tags, optionally restricted to tags attached
// to at least one dot via assigned_only
func (h *TagHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.ListTagsRequest{
		AssignedOnly: businessflow.ParseAssignedOnly(c.Query("assigned_only")),
	}

	result, err := h.tagFlow.ListTags(createRequestContext(c, "/api/dot/tags/"), userID, &req)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Tag listing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Tag listing failed", "TAG_LIST_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Tags retrieved successfully", result)
}

// Create stores a new tag owned by the caller
func (h *TagHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateTagRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.tagFlow.CreateTag(createRequestContext(c, "/api/dot/tags/"), userID, &req, metadata)
	if err != nil {
		if businessflow.IsTagNameRequired(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Tag name is required", "TAG_NAME_REQUIRED", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Tag creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Tag creation failed", "TAG_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "Tag created successfully", result)
}

// Delete removes one of the caller's tags
func (h *TagHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	tagID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || tagID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid tag id", "INVALID_TAG_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err = h.tagFlow.DeleteTag(createRequestContext(c, "/api/dot/tags/:id/"), userID, uint(tagID), metadata)
	if err != nil {
		if businessflow.IsTagNotFound(err) {
			return errorResponse(c, fiber.StatusNotFound, "Tag not found", "TAG_NOT_FOUND", nil)
		}
		if businessflow.IsTagInUse(err) {
			return errorResponse(c, fiber.StatusConflict, "Tag is still referenced by dots", "TAG_IN_USE", nil)
		}
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Tag deletion failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Tag deletion failed", "TAG_DELETE_FAILED", nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
