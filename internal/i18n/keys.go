// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyServerError     = "server_error"
	KeyTooManyRequests = "too_many_requests"

	// Admin authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"

	// Products
	KeyProductCreated     = "product.created"
	KeyProductUpdated     = "product.updated"
	KeyProductNotFound    = "product.not_found"
	KeyProductCreateError = "product.create_error"
	KeyProductUpdateError = "product.update_error"

	// File upload
	KeyFileTooLarge       = "file.too_large"
	KeyFileTooMany        = "file.too_many"
	KeyFileInvalidType    = "file.invalid_type"
	KeyFileUploadFailed   = "file.upload_failed"
	KeyFileInvalidUpload  = "file.invalid_upload"
	KeyStorageUnavailable = "file.storage_unavailable"
)
