// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unique-collection/catalog/internal/models"
)

var (
	ErrNotFound             = errors.New("product not found")
	ErrStorageNotConfigured = errors.New("image storage is not configured")
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for user-correctable input problems. It never
// wraps an infrastructure failure.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFoundError carries the id that could not be resolved.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// UploadError reports that the image store rejected or failed an upload.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload image %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed repository write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s product: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CleanupError reports a failed best-effort asset deletion. It is logged and
// never returned to callers of the catalog.
type CleanupError struct {
	Asset models.AssetRef
	Err   error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("failed to delete asset %s: %v", e.Asset.Key, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsUpload(err error) bool {
	var u *UploadError
	return errors.As(err, &u)
}
