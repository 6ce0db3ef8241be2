// Package businessflow contains the core business logic and use cases for the dot catalog
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidEmail       = errors.New("email is missing or invalid")

	// Tag-related errors
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagNameRequired = errors.New("tag name is required")
	ErrTagInUse        = errors.New("tag is still referenced by dots")

	// Dot-related errors
	ErrDotNotFound        = errors.New("dot not found")
	ErrDotNameRequired    = errors.New("dot name is required")
	ErrCoordinateRequired = errors.New("longitude and latitude are required")
	ErrRatingOutOfRange   = errors.New("rating must be between 0.0 and 5.0")
	ErrDescriptionTooLong = errors.New("description exceeds 350 characters")
	ErrForeignTag         = errors.New("tag does not belong to the dot's owner")

	// Filter errors
	ErrInvalidTagFilter = errors.New("tag filter must be a comma-separated list of ids")

	// Image errors
	ErrInvalidImage  = errors.New("payload is not a decodable image")
	ErrImageTooLarge = errors.New("image exceeds the size limit")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsInvalidEmail(err error) bool {
	return errors.Is(err, ErrInvalidEmail)
}

func IsTagNotFound(err error) bool {
	return errors.Is(err, ErrTagNotFound)
}

func IsTagNameRequired(err error) bool {
	return errors.Is(err, ErrTagNameRequired)
}

func IsTagInUse(err error) bool {
	return errors.Is(err, ErrTagInUse)
}

func IsDotNotFound(err error) bool {
	return errors.Is(err, ErrDotNotFound)
}

func IsRatingOutOfRange(err error) bool {
	return errors.Is(err, ErrRatingOutOfRange)
}

func IsDescriptionTooLong(err error) bool {
	return errors.Is(err, ErrDescriptionTooLong)
}

func IsForeignTag(err error) bool {
	return errors.Is(err, ErrForeignTag)
}

func IsInvalidTagFilter(err error) bool {
	return errors.Is(err, ErrInvalidTagFilter)
}

func IsInvalidImage(err error) bool {
	return errors.Is(err, ErrInvalidImage)
}

func IsImageTooLarge(err error) bool {
	return errors.Is(err, ErrImageTooLarge)
}

func IsValidationError(err error) bool {
	return IsInvalidEmail(err) ||
		IsTagNameRequired(err) ||
		IsRatingOutOfRange(err) ||
		IsDescriptionTooLong(err) ||
		IsForeignTag(err) ||
		IsInvalidTagFilter(err) ||
		errors.Is(err, ErrDotNameRequired) ||
		errors.Is(err, ErrCoordinateRequired)
}
