// Package storage keeps user profile pictures in an S3-compatible bucket
// (MinIO in the default deployment).
//
// Uploads are validated before any network I/O: the file extension must be
// one of jpg, jpeg, png or gif, and the body must not exceed the configured
// size limit. The bucket is provisioned lazily and best-effort: a failed
// existence check or creation is logged, not returned.
//
//	st, err := storage.New(ctx, cfg, storage.WithLogger(log))
//	url, err := st.UploadProfilePicture(ctx, file, "42-3f1c.png")
//	signed, err := st.ProfilePictureURL(ctx, "42-3f1c.png")
//
// All SDK failures are mapped to the sentinel errors in errors.go
// (ErrAccessDenied, ErrServiceUnavailable, ErrOperationTimeout and so on).
package storage
