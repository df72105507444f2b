package storage

import (
	"strings"
	"time"
)

// Config describes the S3-compatible (MinIO) endpoint holding profile pictures.
type Config struct {
	Endpoint      string        `env:"MINIO_ENDPOINT" envDefault:"minio:9000"` // host:port, or a full URL
	AccessKey     string        `env:"MINIO_ACCESS_KEY"`
	SecretKey     string        `env:"MINIO_SECRET_KEY"`
	UseSSL        bool          `env:"MINIO_USE_SSL" envDefault:"false"`
	Bucket        string        `env:"MINIO_BUCKET_NAME" envDefault:"picture"`
	Region        string        `env:"MINIO_REGION" envDefault:"us-east-1"`
	PresignTTL    time.Duration `env:"MINIO_PRESIGN_TTL" envDefault:"168h"`
	MaxUploadSize int64         `env:"MINIO_MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

// EndpointURL returns Endpoint with a scheme. A scheme already present in
// Endpoint is kept; otherwise UseSSL picks https or http.
func (c Config) EndpointURL() string {
	endpoint := strings.TrimSuffix(c.Endpoint, "/")
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if c.UseSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
