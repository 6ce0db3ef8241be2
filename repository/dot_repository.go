package repository

import (
	"context"
	"errors"

	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/utils"
	"gorm.io/gorm"
)

// DotRepositoryImpl implements DotRepository interface
type DotRepositoryImpl struct {
	*BaseRepository[models.Dot, models.DotFilter]
}

// NewDotRepository creates a new dot repository
func NewDotRepository(db *gorm.DB) DotRepository {
	return &DotRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Dot, models.DotFilter](db),
	}
}

// Save inserts a dot together with its tag associations
func (r *DotRepositoryImpl) Save(ctx context.Context, dot *models.Dot) error {
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

	// FullSaveAssociations would try to upsert the tag rows themselves;
	// the join rows are all we want here.
	err = db.Omit("Tags.*").Create(dot).Error
	if err != nil {
		return err
	}
	return nil
}

// ByIDForOwner retrieves a dot by id with its tags preloaded, restricted to
// the given owner. Another owner's dot is indistinguishable from a missing
// one: both return nil.
func (r *DotRepositoryImpl) ByIDForOwner(ctx context.Context, id, ownerID uint) (*models.Dot, error) {
	db := r.getDB(ctx)
	var row models.Dot
	err := db.Preload("Tags").Where("id = ? AND user_id = ?", id, ownerID).Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListForOwner returns the owner's dots with tags preloaded. A non-empty
// tagIDs set narrows the result to dots whose tag set intersects it.
func (r *DotRepositoryImpl) ListForOwner(ctx context.Context, ownerID uint, tagIDs []uint) ([]*models.Dot, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Dot{}).Preload("Tags").Where("dots.user_id = ?", ownerID)

	if len(tagIDs) > 0 {
		query = query.
			Joins("JOIN dot_tags ON dot_tags.dot_id = dots.id").
			Where("dot_tags.tag_id IN ?", tagIDs).
			Distinct("dots.*")
	}

	var rows []*models.Dot
	if err := query.Order("dots.id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists changed scalar columns of an existing dot. Tag
// associations are replaced separately via ReplaceTags.
func (r *DotRepositoryImpl) Update(ctx context.Context, dot *models.Dot) error {
	db := r.getDB(ctx)
	dot.UpdatedAt = utils.UTCNow()
	return db.Omit("Tags").Save(dot).Error
}

// ReplaceTags swaps the dot's tag set for the given one
func (r *DotRepositoryImpl) ReplaceTags(ctx context.Context, dot *models.Dot, tags []models.Tag) error {
	db := r.getDB(ctx)
	if err := db.Model(dot).Association("Tags").Replace(tags); err != nil {
		return err
	}
	dot.Tags = tags
	return nil
}

// UpdateImage atomically swaps the dot's blob reference. This is the last
// step of an image attach; the blob is already on disk when this runs.
func (r *DotRepositoryImpl) UpdateImage(ctx context.Context, dotID uint, imagePath *string) error {
	db := r.getDB(ctx)
	return db.Model(&models.Dot{}).Where("id = ?", dotID).Updates(map[string]any{
		"image":      imagePath,
		"updated_at": utils.UTCNow(),
	}).Error
}

// Delete removes the dot and its tag associations
func (r *DotRepositoryImpl) Delete(ctx context.Context, dot *models.Dot) error {
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

	if err = db.Exec("DELETE FROM dot_tags WHERE dot_id = ?", dot.ID).Error; err != nil {
		return err
	}
	if err = db.Delete(dot).Error; err != nil {
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *DotRepositoryImpl) applyFilter(query *gorm.DB, filter models.DotFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("dots.id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("dots.user_id = ?", *filter.UserID)
	}
	if filter.Name != nil {
		query = query.Where("dots.name = ?", *filter.Name)
	}
	if len(filter.TagIDs) > 0 {
		query = query.
			Joins("JOIN dot_tags ON dot_tags.dot_id = dots.id").
			Where("dot_tags.tag_id IN ?", filter.TagIDs).
			Distinct("dots.*")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("dots.created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("dots.created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves dots based on filter criteria
func (r *DotRepositoryImpl) ByFilter(ctx context.Context, filter models.DotFilter, orderBy string, limit, offset int) ([]*models.Dot, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Dot{}).Preload("Tags"), filter)

	if orderBy == "" {
		orderBy = "dots.id"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Dot
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of dots matching the filter
func (r *DotRepositoryImpl) Count(ctx context.Context, filter models.DotFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Dot{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any dot matching the filter exists
func (r *DotRepositoryImpl) Exists(ctx context.Context, filter models.DotFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
