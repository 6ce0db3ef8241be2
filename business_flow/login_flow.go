// Package businessflow contains the core business logic and use cases for the dot catalog
package businessflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/app/services"
	"github.com/kubousky/dotmap/repository"
	"github.com/kubousky/dotmap/utils"
)

// AuthFlow handles credential verification and token issuance
type AuthFlow interface {
	ObtainToken(ctx context.Context, request *dto.ObtainTokenRequest, metadata *ClientMetadata) (*dto.TokenPairDTO, error)
	VerifyToken(ctx context.Context, request *dto.VerifyTokenRequest) (*dto.UserDTO, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(userRepo repository.UserRepository, tokenService services.TokenService, db *gorm.DB) AuthFlow {
	return &AuthFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// ObtainToken authenticates a user with email and password and issues an
// access/refresh token pair. All credential failures surface the same way
// so a caller cannot probe which emails exist.
func (af *AuthFlowImpl) ObtainToken(ctx context.Context, request *dto.ObtainTokenRequest, metadata *ClientMetadata) (*dto.TokenPairDTO, error) {
	email := utils.NormalizeEmail(request.Email)

	user, err := af.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", ErrUserNotFound)
	}

	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateTokens(user.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", err)
	}

	if err := af.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, NewBusinessError("TOKEN_OBTAIN_FAILED", "Token issuance failed", err)
	}

	return &dto.TokenPairDTO{
		Access:    accessToken,
		Refresh:   refreshToken,
		TokenType: "Bearer",
		ExpiresIn: utils.AccessTokenTTLSeconds,
	}, nil
}

// VerifyToken checks a token's signature, expiry and revocation state and
// returns the account it belongs to.
func (af *AuthFlowImpl) VerifyToken(ctx context.Context, request *dto.VerifyTokenRequest) (*dto.UserDTO, error) {
	claims, err := af.tokenService.ValidateToken(request.Token)
	if err != nil {
		return nil, NewBusinessError("TOKEN_VERIFY_FAILED", "Token verification failed", err)
	}

	user, err := getUser(ctx, af.userRepo, claims.UserID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_VERIFY_FAILED", "Token verification failed", err)
	}

	out := ToUserDTO(*user)
	return &out, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair
func (af *AuthFlowImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	accessToken, newRefreshToken, err := af.tokenService.RefreshToken(refreshToken)
	if err != nil {
		return nil, NewBusinessError("TOKEN_REFRESH_FAILED", fmt.Sprintf("Token refresh failed: %v", err), err)
	}

	return &dto.TokenPairDTO{
		Access:    accessToken,
		Refresh:   newRefreshToken,
		TokenType: "Bearer",
		ExpiresIn: utils.AccessTokenTTLSeconds,
	}, nil
}
