// Package businessflow contains the core business logic and use cases for the dot catalog
package businessflow

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/repository"
)

// TagFlow handles tag management for a single owner. Every operation takes
// the caller's user id; a tag owned by someone else behaves as if it does
// not exist.
type TagFlow interface {
	CreateTag(ctx context.Context, userID uint, request *dto.CreateTagRequest, metadata *ClientMetadata) (*dto.TagDTO, error)
	ListTags(ctx context.Context, userID uint, request *dto.ListTagsRequest) ([]dto.TagDTO, error)
	DeleteTag(ctx context.Context, userID uint, tagID uint, metadata *ClientMetadata) error
}

// TagFlowImpl implements the tag business flow
type TagFlowImpl struct {
	tagRepo  repository.TagRepository
	userRepo repository.UserRepository
	db       *gorm.DB

	// When set, deleting a tag that is still attached to a dot is refused
	// instead of detaching it everywhere.
	blockAssignedDelete bool
}

// NewTagFlow creates a new tag flow instance
func NewTagFlow(tagRepo repository.TagRepository, userRepo repository.UserRepository, db *gorm.DB, blockAssignedDelete bool) TagFlow {
	return &TagFlowImpl{
		tagRepo:             tagRepo,
		userRepo:            userRepo,
		db:                  db,
		blockAssignedDelete: blockAssignedDelete,
	}
}

// CreateTag stores a new tag owned by the caller
func (tf *TagFlowImpl) CreateTag(ctx context.Context, userID uint, request *dto.CreateTagRequest, metadata *ClientMetadata) (*dto.TagDTO, error) {
	user, err := getUser(ctx, tf.userRepo, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(request.Name)
	if name == "" {
		return nil, NewBusinessError("TAG_VALIDATION_FAILED", "Tag validation failed", ErrTagNameRequired)
	}

	tag := &models.Tag{
		UserID: user.ID,
		Name:   name,
	}
	if err := tf.tagRepo.Save(ctx, tag); err != nil {
		return nil, NewBusinessError("TAG_CREATE_FAILED", "Tag creation failed", err)
	}

	out := ToTagDTO(*tag)
	return &out, nil
}

// ListTags returns the caller's tags ordered by name descending. With
// AssignedOnly set, only tags attached to at least one dot are returned,
// each at most once.
func (tf *TagFlowImpl) ListTags(ctx context.Context, userID uint, request *dto.ListTagsRequest) ([]dto.TagDTO, error) {
	user, err := getUser(ctx, tf.userRepo, userID)
	if err != nil {
		return nil, err
	}

	tags, err := tf.tagRepo.ListForOwner(ctx, user.ID, request.AssignedOnly)
	if err != nil {
		return nil, NewBusinessError("TAG_LIST_FAILED", "Tag listing failed", err)
	}

	out := make([]dto.TagDTO, 0, len(tags))
	for _, tag := range tags {
		out = append(out, ToTagDTO(*tag))
	}
	return out, nil
}

// DeleteTag removes a tag the caller owns. Attachments to the caller's
// dots are cleaned up with it, unless strict mode refuses the delete while
// references remain.
func (tf *TagFlowImpl) DeleteTag(ctx context.Context, userID uint, tagID uint, metadata *ClientMetadata) error {
	user, err := getUser(ctx, tf.userRepo, userID)
	if err != nil {
		return err
	}

	return repository.WithTransaction(ctx, tf.db, func(txCtx context.Context) error {
		tag, err := tf.tagRepo.ByIDForOwner(txCtx, tagID, user.ID)
		if err != nil {
			return NewBusinessError("TAG_DELETE_FAILED", "Tag deletion failed", err)
		}
		if tag == nil {
			return ErrTagNotFound
		}

		if tf.blockAssignedDelete {
			refs, err := tf.tagRepo.CountDotsReferencing(txCtx, tag.ID)
			if err != nil {
				return NewBusinessError("TAG_DELETE_FAILED", "Tag deletion failed", err)
			}
			if refs > 0 {
				return ErrTagInUse
			}
		}

		if err := tf.tagRepo.Delete(txCtx, tag); err != nil {
			return NewBusinessError("TAG_DELETE_FAILED", "Tag deletion failed", err)
		}
		return nil
	})
}
