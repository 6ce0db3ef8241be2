// Package businessflow contains the core business logic and use cases for the dot catalog
package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/repository"
)

// DotFlow handles dot management for a single owner. A dot owned by
// someone else behaves as if it does not exist.
type DotFlow interface {
	CreateDot(ctx context.Context, userID uint, request *dto.CreateDotRequest, metadata *ClientMetadata) (*dto.DotDetailDTO, error)
	GetDot(ctx context.Context, userID uint, dotID uint) (*dto.DotDetailDTO, error)
	ListDots(ctx context.Context, userID uint, request *dto.ListDotsRequest) ([]dto.DotSummaryDTO, error)
	UpdateDot(ctx context.Context, userID uint, dotID uint, request *dto.UpdateDotRequest, metadata *ClientMetadata) (*dto.DotDetailDTO, error)
	DeleteDot(ctx context.Context, userID uint, dotID uint, metadata *ClientMetadata) error
	ExportDots(ctx context.Context, userID uint) (string, []byte, error)
}

// DotFlowImpl implements the dot business flow
type DotFlowImpl struct {
	dotRepo  repository.DotRepository
	tagRepo  repository.TagRepository
	userRepo repository.UserRepository
	db       *gorm.DB
}

// NewDotFlow creates a new dot flow instance
func NewDotFlow(dotRepo repository.DotRepository, tagRepo repository.TagRepository, userRepo repository.UserRepository, db *gorm.DB) DotFlow {
	return &DotFlowImpl{
		dotRepo:  dotRepo,
		tagRepo:  tagRepo,
		userRepo: userRepo,
		db:       db,
	}
}

// CreateDot stores a new dot owned by the caller. Every referenced tag id
// must resolve to a tag the caller owns, otherwise the whole create fails.
func (df *DotFlowImpl) CreateDot(ctx context.Context, userID uint, request *dto.CreateDotRequest, metadata *ClientMetadata) (*dto.DotDetailDTO, error) {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return nil, err
	}

	if err := validateDotFields(request.Name, request.Description, request.Lon, request.Lat, request.Rating); err != nil {
		return nil, NewBusinessError("DOT_VALIDATION_FAILED", "Dot validation failed", err)
	}

	var dot *models.Dot
	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		tags, err := df.resolveTags(txCtx, request.Tags, user.ID)
		if err != nil {
			return err
		}

		dot = &models.Dot{
			UserID:      user.ID,
			Name:        strings.TrimSpace(request.Name),
			Description: request.Description,
			Lon:         request.Lon,
			Lat:         request.Lat,
			Rating:      request.Rating,
			Link:        request.Link,
			Tags:        tags,
		}
		return df.dotRepo.Save(txCtx, dot)
	})
	if err != nil {
		if IsForeignTag(err) {
			return nil, err
		}
		return nil, NewBusinessError("DOT_CREATE_FAILED", "Dot creation failed", err)
	}

	out := ToDotDetailDTO(*dot)
	return &out, nil
}

// GetDot returns the detail view of one of the caller's dots
func (df *DotFlowImpl) GetDot(ctx context.Context, userID uint, dotID uint) (*dto.DotDetailDTO, error) {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return nil, err
	}

	dot, err := df.dotRepo.ByIDForOwner(ctx, dotID, user.ID)
	if err != nil {
		return nil, NewBusinessError("DOT_FETCH_FAILED", "Dot fetch failed", err)
	}
	if dot == nil {
		return nil, ErrDotNotFound
	}

	out := ToDotDetailDTO(*dot)
	return &out, nil
}

// ListDots returns the caller's dots, newest first. With TagIDs set, only
// dots carrying at least one of the requested tags are returned, each at
// most once.
func (df *DotFlowImpl) ListDots(ctx context.Context, userID uint, request *dto.ListDotsRequest) ([]dto.DotSummaryDTO, error) {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return nil, err
	}

	dots, err := df.dotRepo.ListForOwner(ctx, user.ID, request.TagIDs)
	if err != nil {
		return nil, NewBusinessError("DOT_LIST_FAILED", "Dot listing failed", err)
	}

	out := make([]dto.DotSummaryDTO, 0, len(dots))
	for _, dot := range dots {
		out = append(out, ToDotSummaryDTO(*dot))
	}
	return out, nil
}

// UpdateDot applies a partial update to one of the caller's dots. Nil
// fields keep their stored value; a non-nil Tags slice replaces the whole
// tag set, empty slice included.
func (df *DotFlowImpl) UpdateDot(ctx context.Context, userID uint, dotID uint, request *dto.UpdateDotRequest, metadata *ClientMetadata) (*dto.DotDetailDTO, error) {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return nil, err
	}

	var updated *models.Dot
	err = repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		dot, err := df.dotRepo.ByIDForOwner(txCtx, dotID, user.ID)
		if err != nil {
			return err
		}
		if dot == nil {
			return ErrDotNotFound
		}

		if request.Name != nil {
			dot.Name = strings.TrimSpace(*request.Name)
		}
		if request.Description != nil {
			dot.Description = *request.Description
		}
		if request.Lon != nil {
			dot.Lon = *request.Lon
		}
		if request.Lat != nil {
			dot.Lat = *request.Lat
		}
		if request.Rating != nil {
			dot.Rating = *request.Rating
		}
		if request.Link != nil {
			dot.Link = *request.Link
		}

		if err := validateDotFields(dot.Name, dot.Description, dot.Lon, dot.Lat, dot.Rating); err != nil {
			return err
		}

		if err := df.dotRepo.Update(txCtx, dot); err != nil {
			return err
		}

		if request.Tags != nil {
			tags, err := df.resolveTags(txCtx, request.Tags, user.ID)
			if err != nil {
				return err
			}
			if err := df.dotRepo.ReplaceTags(txCtx, dot, tags); err != nil {
				return err
			}
			dot.Tags = tags
		}

		updated = dot
		return nil
	})
	if err != nil {
		if IsDotNotFound(err) || IsForeignTag(err) || IsValidationError(err) {
			return nil, err
		}
		return nil, NewBusinessError("DOT_UPDATE_FAILED", "Dot update failed", err)
	}

	out := ToDotDetailDTO(*updated)
	return &out, nil
}

// DeleteDot removes one of the caller's dots along with its tag
// attachments. The image blob on disk is left to the caller to clean up.
func (df *DotFlowImpl) DeleteDot(ctx context.Context, userID uint, dotID uint, metadata *ClientMetadata) error {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return err
	}

	return repository.WithTransaction(ctx, df.db, func(txCtx context.Context) error {
		dot, err := df.dotRepo.ByIDForOwner(txCtx, dotID, user.ID)
		if err != nil {
			return NewBusinessError("DOT_DELETE_FAILED", "Dot deletion failed", err)
		}
		if dot == nil {
			return ErrDotNotFound
		}
		if err := df.dotRepo.Delete(txCtx, dot); err != nil {
			return NewBusinessError("DOT_DELETE_FAILED", "Dot deletion failed", err)
		}
		return nil
	})
}

// ExportDots renders the caller's full catalog as an xlsx workbook
func (df *DotFlowImpl) ExportDots(ctx context.Context, userID uint) (string, []byte, error) {
	user, err := getUser(ctx, df.userRepo, userID)
	if err != nil {
		return "", nil, err
	}

	dots, err := df.dotRepo.ListForOwner(ctx, user.ID, nil)
	if err != nil {
		return "", nil, NewBusinessError("DOT_EXPORT_FAILED", "Dot export failed", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"id", "name", "description", "lat", "lon", "rating", "link", "tags", "image", "created_at", "updated_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, dot := range dots {
		tagNames := make([]string, 0, len(dot.Tags))
		for _, t := range dot.Tags {
			tagNames = append(tagNames, t.Name)
		}
		image := ""
		if dot.Image != nil {
			image = *dot.Image
		}
		record := []string{
			strconv.FormatUint(uint64(dot.ID), 10),
			dot.Name,
			dot.Description,
			dot.Lat,
			dot.Lon,
			strconv.FormatFloat(dot.Rating, 'f', -1, 64),
			dot.Link,
			strings.Join(tagNames, ", "),
			image,
			dot.CreatedAt.UTC().Format(time.RFC3339),
			dot.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("dots_%s.xlsx", time.Now().UTC().Format("20060102"))
	return filename, buf.Bytes(), nil
}

// resolveTags loads the given tag ids scoped to the owner. A shorter
// result than the id list means at least one id is unknown or foreign.
func (df *DotFlowImpl) resolveTags(ctx context.Context, ids []uint, ownerID uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	found, err := df.tagRepo.ListByIDsForOwner(ctx, ids, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(ids))
	unique := 0
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique++
		}
	}
	if len(found) != unique {
		return nil, ErrForeignTag
	}

	tags := make([]models.Tag, 0, len(found))
	for _, t := range found {
		tags = append(tags, *t)
	}
	return tags, nil
}

func validateDotFields(name, description, lon, lat string, rating float64) error {
	if strings.TrimSpace(name) == "" {
		return ErrDotNameRequired
	}
	if strings.TrimSpace(lon) == "" || strings.TrimSpace(lat) == "" {
		return ErrCoordinateRequired
	}
	if rating < models.MinDotRating || rating > models.MaxDotRating {
		return ErrRatingOutOfRange
	}
	if len([]rune(description)) > models.MaxDotDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}
