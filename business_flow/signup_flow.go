// Package businessflow contains the core business logic and use cases for the dot catalog
package businessflow

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/repository"
	"github.com/kubousky/dotmap/utils"
	"gorm.io/gorm"
)

// SignupFlow handles user account creation and profile updates
type SignupFlow interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	CreateSuperuser(ctx context.Context, email, password string) (*dto.UserDTO, error)
	GetUser(ctx context.Context, userID uint) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, userID uint, req *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo   repository.UserRepository
	bcryptCost int
	db         *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(userRepo repository.UserRepository, bcryptCost int, db *gorm.DB) SignupFlow {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &SignupFlowImpl{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		db:         db,
	}
}

// CreateUser registers a new account. The email is normalized to lower case
// before the uniqueness check and storage; the password only ever exists in
// hashed form past this point.
func (s *SignupFlowImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	user, err := s.createUser(ctx, req.Email, req.Password, req.Name, false)
	if err != nil {
		return nil, err
	}
	out := ToUserDTO(*user)
	return &out, nil
}

// CreateSuperuser registers an account with staff and superuser flags set.
// Used by operational tooling, not exposed over HTTP.
func (s *SignupFlowImpl) CreateSuperuser(ctx context.Context, email, password string) (*dto.UserDTO, error) {
	user, err := s.createUser(ctx, email, password, "", true)
	if err != nil {
		return nil, err
	}
	out := ToUserDTO(*user)
	return &out, nil
}

func (s *SignupFlowImpl) createUser(ctx context.Context, email, password, name string, elevated bool) (*models.User, error) {
	normalized := utils.NormalizeEmail(email)
	if !utils.IsValidEmail(normalized) {
		return nil, NewBusinessError("INVALID_EMAIL", "Email is missing or invalid", ErrInvalidEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.userRepo.ByEmail(txCtx, normalized)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		user = &models.User{
			Email:        normalized,
			Name:         name,
			PasswordHash: string(hash),
			IsActive:     utils.ToPtr(true),
			IsStaff:      utils.ToPtr(elevated),
			IsSuperuser:  utils.ToPtr(elevated),
		}
		return s.userRepo.Save(txCtx, user)
	})
	if err != nil {
		if IsEmailAlreadyExists(err) || IsInvalidEmail(err) {
			return nil, err
		}
		return nil, NewBusinessError("USER_CREATE_FAILED", "User creation failed", err)
	}

	return user, nil
}

// GetUser returns the caller's own profile
func (s *SignupFlowImpl) GetUser(ctx context.Context, userID uint) (*dto.UserDTO, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	out := ToUserDTO(*user)
	return &out, nil
}

// UpdateUser applies profile changes; a provided password is re-hashed.
func (s *SignupFlowImpl) UpdateUser(ctx context.Context, userID uint, req *dto.UpdateUserRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if req.Name != nil {
			if err := s.userRepo.UpdateName(txCtx, user.ID, *req.Name); err != nil {
				return err
			}
			user.Name = *req.Name
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
			if err != nil {
				return err
			}
			if err := s.userRepo.UpdatePassword(txCtx, user.ID, string(hash)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("USER_UPDATE_FAILED", "User update failed", err)
	}

	out := ToUserDTO(*user)
	return &out, nil
}
