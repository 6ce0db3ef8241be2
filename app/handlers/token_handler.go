// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/kubousky/dotmap/app/dto"
	businessflow "github.com/kubousky/dotmap/business_flow"
)

// TokenHandlerInterface defines the contract for token handlers
type TokenHandlerInterface interface {
	Obtain(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
}

// TokenHandler handles token issuance and verification HTTP requests
type TokenHandler struct {
	authFlow  businessflow.AuthFlow
	validator *validator.Validate
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(authFlow businessflow.AuthFlow) *TokenHandler {
	return &TokenHandler{
		authFlow:  authFlow,
		validator: validator.New(),
	}
}

// Obtain exchanges email and password for an access/refresh token pair.
// Wrong email and wrong password answer identically.
func (h *TokenHandler) Obtain(c fiber.Ctx) error {
	var req dto.ObtainTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.authFlow.ObtainToken(createRequestContext(c, "/api/token/"), &req, metadata)
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsIncorrectPassword(err) || businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusBadRequest, "Unable to authenticate with provided credentials", "INVALID_CREDENTIALS", nil)
		}

		log.Println("Token issuance failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Token issuance failed", "TOKEN_OBTAIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Token issued successfully", result)
}

// Verify checks a token's validity and returns the account it belongs to
func (h *TokenHandler) Verify(c fiber.Ctx) error {
	var req dto.VerifyTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.authFlow.VerifyToken(createRequestContext(c, "/api/token/verify/"), &req)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Token is invalid or expired", "TOKEN_INVALID", nil)
	}

	return successResponse(c, fiber.StatusOK, "Token is valid", result)
}

// Refresh exchanges a refresh token for a fresh token pair
func (h *TokenHandler) Refresh(c fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh" validate:"required"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.authFlow.RefreshToken(createRequestContext(c, "/api/token/refresh/"), req.Refresh)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Refresh token is invalid or expired", "TOKEN_INVALID", nil)
	}

	return successResponse(c, fiber.StatusOK, "Token refreshed successfully", result)
}
