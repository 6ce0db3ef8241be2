package repository

import (
	"context"
	"errors"

	"github.com/kubousky/dotmap/models"
	"gorm.io/gorm"
)

// TagRepositoryImpl implements TagRepository interface
type TagRepositoryImpl struct {
	*BaseRepository[models.Tag, models.TagFilter]
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tag, models.TagFilter](db),
	}
}

// ByIDForOwner retrieves a tag by id, restricted to the given owner.
// A tag owned by somebody else comes back as nil, same as a missing row.
func (r *TagRepositoryImpl) ByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Tag, error) {
	db := r.getDB(ctx)
	var row models.Tag
	if err := db.Where("id = ? AND user_id = ?", id, ownerID).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListForOwner returns the owner's tags ordered by name descending. With
// assignedOnly set, only tags referenced by at least one dot are returned,
// each tag at most once regardless of how many dots reference it.
func (r *TagRepositoryImpl) ListForOwner(ctx context.Context, ownerID uint, assignedOnly bool) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Tag{}).Where("tags.user_id = ?", ownerID)

	if assignedOnly {
		query = query.
			Joins("JOIN dot_tags ON dot_tags.tag_id = tags.id").
			Distinct("tags.*")
	}

	var rows []*models.Tag
	if err := query.Order("tags.name DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDsForOwner retrieves the subset of ids that resolve to tags owned
// by ownerID. Callers compare lengths to detect foreign or missing ids.
func (r *TagRepositoryImpl) ListByIDsForOwner(ctx context.Context, ids []uint, ownerID uint) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	db := r.getDB(ctx)
	var rows []*models.Tag
	if err := db.Where("id IN ? AND user_id = ?", ids, ownerID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountDotsReferencing returns how many dots currently carry the tag
func (r *TagRepositoryImpl) CountDotsReferencing(ctx context.Context, tagID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := db.Table("dot_tags").Where("tag_id = ?", tagID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the tag and its dot associations
func (r *TagRepositoryImpl) Delete(ctx context.Context, tag *models.Tag) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if err = db.Exec("DELETE FROM dot_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
		return err
	}
	if err = db.Delete(tag).Error; err != nil {
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TagRepositoryImpl) applyFilter(query *gorm.DB, filter models.TagFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("tags.id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("tags.user_id = ?", *filter.UserID)
	}
	if filter.Name != nil {
		query = query.Where("tags.name = ?", *filter.Name)
	}
	if filter.AssignedOnly != nil && *filter.AssignedOnly {
		query = query.
			Joins("JOIN dot_tags ON dot_tags.tag_id = tags.id").
			Distinct("tags.*")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("tags.created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("tags.created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves tags based on filter criteria
func (r *TagRepositoryImpl) ByFilter(ctx context.Context, filter models.TagFilter, orderBy string, limit, offset int) ([]*models.Tag, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tag{}), filter)

	if orderBy == "" {
		orderBy = "tags.name DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Tag
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of tags matching the filter
func (r *TagRepositoryImpl) Count(ctx context.Context, filter models.TagFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tag{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any tag matching the filter exists
func (r *TagRepositoryImpl) Exists(ctx context.Context, filter models.TagFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
