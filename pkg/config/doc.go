// Package config loads application configuration from environment variables
// into typed structs.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - LoadEnv reads one or more dotenv files into the process environment
//     (".env" by default). Later files override earlier ones; variables already
//     set in the process are never overwritten.
//   - Load parses the environment into any struct annotated with `env` tags
//     and caches the result per type, so every package can call Load for its
//     own Config without re-parsing.
//   - MustLoad and MustLoadEnv panic instead of returning an error.
//   - Reload and ResetCache drop cached values, mainly for tests.
//
// # Usage
//
//	import "github.com/dmitrymomot/usermgmt/pkg/config"
//
//	type StorageConfig struct {
//	    Endpoint string `env:"MINIO_ENDPOINT" envDefault:"minio:9000"`
//	    Bucket   string `env:"MINIO_BUCKET_NAME" envDefault:"picture"`
//	    UseSSL   bool   `env:"MINIO_USE_SSL" envDefault:"false"`
//	}
//
//	var cfg StorageConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Nested structs are parsed as part of their parent, which is how the
// application config aggregates the per-package configs.
//
// # Errors
//
//   - ErrParsingConfig: the environment could not be parsed into the struct
//     (missing required variable, malformed value)
//   - ErrLoadingEnvFile: a dotenv file could not be read
//   - ErrNilPointer: nil pointer passed to Load
package config
