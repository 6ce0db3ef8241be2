// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateUserRequest represents the signup form data
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=128"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// UpdateUserRequest represents a profile update; a non-nil password is
// re-hashed before storage.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,max=128"`
}

// UserDTO represents user data for API responses. The credential hash is
// never part of any response shape.
type UserDTO struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsActive  *bool  `json:"is_active"`
	IsStaff   *bool  `json:"is_staff"`
	CreatedAt string `json:"created_at"`
}
