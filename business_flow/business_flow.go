// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/kubousky/dotmap/app/dto"
	"github.com/kubousky/dotmap/models"
	"github.com/kubousky/dotmap/repository"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToUserDTO converts a user model to its API response shape
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Email:     user.Email,
		Name:      user.Name,
		IsActive:  user.IsActive,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// ToTagDTO converts a tag model to its API response shape
func ToTagDTO(tag models.Tag) dto.TagDTO {
	return dto.TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
	}
}

// ToDotSummaryDTO projects a dot into the list-view shape (tag ids only)
func ToDotSummaryDTO(dot models.Dot) dto.DotSummaryDTO {
	return dto.DotSummaryDTO{
		ID:          dot.ID,
		Name:        dot.Name,
		Description: dot.Description,
		Lat:         dot.Lat,
		Lon:         dot.Lon,
		Rating:      dot.Rating,
		Link:        dot.Link,
		Tags:        dot.TagIDs(),
		Image:       dot.Image,
	}
}

// ToDotDetailDTO projects a dot into the detail-view shape (embedded tags)
func ToDotDetailDTO(dot models.Dot) dto.DotDetailDTO {
	tags := make([]dto.TagDTO, 0, len(dot.Tags))
	for _, t := range dot.Tags {
		tags = append(tags, ToTagDTO(t))
	}
	return dto.DotDetailDTO{
		ID:          dot.ID,
		Name:        dot.Name,
		Description: dot.Description,
		Lat:         dot.Lat,
		Lon:         dot.Lon,
		Rating:      dot.Rating,
		Link:        dot.Link,
		Tags:        tags,
		Image:       dot.Image,
		CreatedAt:   dot.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   dot.UpdatedAt.Format(time.RFC3339),
	}
}

// getUser loads an active user or fails with the matching business error.
// Every flow resolves the caller through this before touching owned data.
func getUser(ctx context.Context, repo repository.UserRepository, userID uint) (*models.User, error) {
	user, err := repo.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}
