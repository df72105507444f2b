package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrymomot/usermgmt/pkg/logger"
)

// DefaultMaxUploadSize caps a single profile picture at 10 MiB.
const DefaultMaxUploadSize int64 = 10 << 20

// allowedExtensions maps accepted picture extensions to their content type.
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// S3Client defines the S3 operations used by Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Presigner creates presigned GET requests. *s3.PresignClient implements it.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Storage uploads profile pictures to an S3-compatible bucket.
// It is safe for concurrent use.
type Storage struct {
	client     S3Client
	presigner  Presigner
	bucket     string
	region     string
	baseURL    string
	presignTTL time.Duration
	maxSize    int64
	log        *slog.Logger
}

// Option configures Storage.
type Option func(*options)

type options struct {
	client     S3Client
	presigner  Presigner
	httpClient *http.Client
	log        *slog.Logger
	maxSize    int64
}

// WithS3Client sets a pre-configured S3 client. Useful for testing with mocks.
func WithS3Client(client S3Client) Option {
	return func(o *options) { o.client = client }
}

// WithPresigner sets the presign client.
func WithPresigner(p Presigner) Option {
	return func(o *options) { o.presigner = p }
}

// WithHTTPClient sets the HTTP client used by the AWS SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMaxUploadSize overrides Config.MaxUploadSize.
func WithMaxUploadSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

// WithLogger sets the logger. Bucket provisioning problems are reported here.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a Storage for cfg. Without WithS3Client it builds an AWS SDK
// client pointed at cfg.Endpoint with path-style addressing, which is what
// MinIO expects.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	if o.maxSize > 0 {
		cfg.MaxUploadSize = o.maxSize
	}

	client, presigner := o.client, o.presigner
	if client == nil {
		awsOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKey != "" && cfg.SecretKey != "" {
			awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			))
		}
		if o.httpClient != nil {
			awsOpts = append(awsOpts, awsconfig.WithHTTPClient(o.httpClient))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadConfig, err)
		}

		s3Client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
			so.BaseEndpoint = aws.String(cfg.EndpointURL())
			so.UsePathStyle = true
		})
		client = s3Client
		if presigner == nil {
			presigner = s3.NewPresignClient(s3Client)
		}
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Storage{
		client:     client,
		presigner:  presigner,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		baseURL:    cfg.EndpointURL() + "/" + cfg.Bucket + "/",
		presignTTL: ttl,
		maxSize:    cfg.MaxUploadSize,
		log:        o.log.With(logger.Component("storage"), logger.Bucket(cfg.Bucket)),
	}, nil
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket when it does not exist yet. It is
// best-effort: failures are logged as warnings and never returned, so startup
// and uploads proceed and any real problem surfaces on the next S3 call.
func (s *Storage) EnsureBucket(ctx context.Context) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return
	}
	if !isBucketMissing(err) {
		s.log.WarnContext(ctx, "bucket existence check failed", logger.Error(err))
		return
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		if isBucketAlreadyThere(err) {
			return
		}
		s.log.WarnContext(ctx, "bucket creation failed", logger.Error(err))
		return
	}
	s.log.InfoContext(ctx, "bucket created")
}

// UploadProfilePicture stores the picture under fileName and returns its URL
// (<endpoint>/<bucket>/<fileName>). Only jpg, jpeg, png and gif files are
// accepted; the extension is checked before anything is read or sent.
func (s *Storage) UploadProfilePicture(ctx context.Context, r io.Reader, fileName string) (string, error) {
	contentType, err := pictureContentType(fileName)
	if err != nil {
		return "", err
	}
	if err := validateKey(fileName); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxSize)
	}

	s.EnsureBucket(ctx)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fileName),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", classifyError(err, "upload")
	}

	s.log.InfoContext(ctx, "profile picture uploaded",
		logger.ObjectKey(fileName),
		slog.Int("size", len(data)),
	)
	return s.ObjectURL(fileName), nil
}

// ProfilePictureURL returns a presigned GET URL for fileName.
func (s *Storage) ProfilePictureURL(ctx context.Context, fileName string) (string, error) {
	if err := validateKey(fileName); err != nil {
		return "", err
	}
	if s.presigner == nil {
		return "", ErrPresignUnavailable
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fileName),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", classifyError(err, "presign")
	}
	return req.URL, nil
}

// ObjectURL returns the direct (unsigned) URL of key.
func (s *Storage) ObjectURL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

// pictureContentType checks the extension (text after the last dot,
// case-insensitive) against the allowed picture types.
func pictureContentType(fileName string) (string, error) {
	ext := strings.ToLower(fileName[strings.LastIndex(fileName, ".")+1:])
	ct, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFileType, ext)
	}
	return ct, nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidObjectKey, key)
	}
	return nil
}
