package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// classifyError maps SDK errors onto the package sentinels so callers can
// branch with errors.Is without importing the AWS SDK.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return errors.Join(ErrObjectNotFound, err)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return errors.Join(ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %s operation: %w", ErrAccessDenied, operation, err)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation: %w", ErrOperationTimeout, operation, err)
		case "SlowDown", "ServiceUnavailable", "InternalError":
			return fmt.Errorf("%w: %s operation: %w", ErrServiceUnavailable, operation, err)
		case "NoSuchKey":
			return errors.Join(ErrObjectNotFound, err)
		case "NoSuchBucket":
			return errors.Join(ErrBucketNotFound, err)
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}

// isBucketMissing reports whether a HeadBucket error means the bucket does
// not exist. HeadBucket has no body, so MinIO and S3 answer with a bare 404.
func isBucketMissing(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

func isBucketAlreadyThere(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var exists *types.BucketAlreadyExists
	return errors.As(err, &exists)
}
