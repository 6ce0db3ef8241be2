// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/app/middleware"
	businessflow "github.com/kubousky/dotmap/business_flow"
)

// UserHandlerInterface defines the contract for user account handlers
type UserHandlerInterface interface {
	Create(c fiber.Ctx) error
	Me(c fiber.Ctx) error
	UpdateMe(c fiber.Ctx) error
}

// UserHandler handles account-related HTTP requests
type UserHandler struct {
	signupFlow businessflow.SignupFlow
	validator  *validator.Validate
}

// NewUserHandler creates a new user handler
func NewUserHandler(signupFlow businessflow.SignupFlow) *UserHandler {
	return &UserHandler{
		signupFlow: signupFlow,
		validator:  validator.New(),
	}
}

// Create handles the account registration endpoint
func (h *UserHandler) Create(c fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.signupFlow.CreateUser(createRequestContext(c, "/api/user/"), &req, metadata)
	if err != nil {
		if businessflow.IsEmailAlreadyExists(err) {
			return errorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsInvalidEmail(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Email is missing or invalid", "INVALID_EMAIL", nil)
		}

		log.Println("User creation failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "User creation failed", "USER_CREATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusCreated, "User created successfully", result)
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.signupFlow.GetUser(createRequestContext(c, "/api/user/me/"), userID)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Profile fetch failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Profile fetch failed", "PROFILE_FETCH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Profile retrieved successfully", result)
}

// UpdateMe applies partial profile changes for the authenticated user
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.signupFlow.UpdateUser(createRequestContext(c, "/api/user/me/"), userID, &req, metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_UNAVAILABLE", nil)
		}

		log.Println("Profile update failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Profile update failed", "PROFILE_UPDATE_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Profile updated successfully", result)
}
