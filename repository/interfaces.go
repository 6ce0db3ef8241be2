// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/kubousky/dotmap/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdateName(ctx context.Context, userID uint, name string) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint) error
	Delete(ctx context.Context, userID uint) error
}

// TagRepository defines operations for tags. Every read takes the owning
// user's id so a caller can never observe another owner's tags.
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Tag, error)
	ListForOwner(ctx context.Context, ownerID uint, assignedOnly bool) ([]*models.Tag, error)
	ListByIDsForOwner(ctx context.Context, ids []uint, ownerID uint) ([]*models.Tag, error)
	CountDotsReferencing(ctx context.Context, tagID uint) (int64, error)
	Delete(ctx context.Context, tag *models.Tag) error
}

// DotRepository defines operations for dots, all scoped to an owner.
type DotRepository interface {
	Repository[models.Dot, models.DotFilter]
	ByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Dot, error)
	ListForOwner(ctx context.Context, ownerID uint, tagIDs []uint) ([]*models.Dot, error)
	Update(ctx context.Context, dot *models.Dot) error
	ReplaceTags(ctx context.Context, dot *models.Dot, tags []models.Tag) error
	UpdateImage(ctx context.Context, dotID uint, imagePath *string) error
	Delete(ctx context.Context, dot *models.Dot) error
}
