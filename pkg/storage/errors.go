package storage

import "errors"

var (
	// Validation errors, returned before any network call
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file size exceeds maximum allowed size")
	ErrInvalidObjectKey    = errors.New("invalid object key")

	// S3 errors after classification
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrObjectNotFound     = errors.New("object not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("storage service temporarily unavailable")
	ErrOperationTimeout   = errors.New("storage operation timed out")
	ErrOperationCanceled  = errors.New("storage operation canceled")

	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid storage configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrPresignUnavailable = errors.New("presign client is not configured")
)
