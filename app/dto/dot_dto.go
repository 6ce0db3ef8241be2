package dto

// CreateDotRequest represents the payload for creating a dot. Tags holds
// tag ids; every id must resolve to a tag owned by the caller.
type CreateDotRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"omitempty,max=350"`
	Lon         string  `json:"lon" validate:"required,max=20"`
	Lat         string  `json:"lat" validate:"required,max=20"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Link        string  `json:"link" validate:"omitempty,max=255"`
	Tags        []uint  `json:"tags"`
}

// UpdateDotRequest represents a partial update; nil fields are left
// untouched. A nil Tags slice keeps the current tag set, an empty non-nil
// slice clears it.
type UpdateDotRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=350"`
	Lon         *string  `json:"lon,omitempty" validate:"omitempty,max=20"`
	Lat         *string  `json:"lat,omitempty" validate:"omitempty,max=20"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Link        *string  `json:"link,omitempty" validate:"omitempty,max=255"`
	Tags        []uint   `json:"tags,omitempty"`
}

// DotSummaryDTO is the list-view shape: tag references as plain ids.
type DotSummaryDTO struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Rating      float64 `json:"rating"`
	Link        string  `json:"link"`
	Tags        []uint  `json:"tags"`
	Image       *string `json:"image,omitempty"`
}

// DotDetailDTO is the detail-view shape: tag references expanded into
// embedded objects. Kept as an independent struct rather than a variant of
// the summary so each shape stays a plain projection of the model.
type DotDetailDTO struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Rating      float64  `json:"rating"`
	Link        string   `json:"link"`
	Tags        []TagDTO `json:"tags"`
	Image       *string  `json:"image,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ListDotsRequest holds the parsed query parameters of a dot list call
type ListDotsRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

// AttachImageResponse reports the stored blob path after an image upload
type AttachImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}
