package dto

// CreateTagRequest represents the payload for creating a tag
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TagDTO represents tag data for API responses
type TagDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListTagsRequest holds the parsed query parameters of a tag list call
type ListTagsRequest struct {
	AssignedOnly bool `json:"assigned_only"`
}
