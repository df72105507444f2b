package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache holds one parsed copy per configuration type.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	globalCache = &cache{values: make(map[reflect.Type]any)}

	defaultEnvOnce sync.Once
)

// LoadEnv loads dotenv files into the process environment. With no arguments
// it loads ".env" from the working directory. Later files take precedence over
// earlier ones, but variables already set in the process environment always
// win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	merged := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", file, err))
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	for k, v := range merged {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	return nil
}

// MustLoadEnv is LoadEnv that panics on error.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(fmt.Sprintf("failed to load env files: %v", err))
	}
}

// Load parses environment variables into v using `env` struct tags. The
// default .env file is read once (a missing file is not an error). Each
// configuration type is parsed once; later calls copy the cached value.
//
//	type SMTPConfig struct {
//		Server string `env:"SMTP_SERVER" envDefault:"smtp.mailtrap.io"`
//		Port   int    `env:"SMTP_PORT" envDefault:"2525"`
//	}
//
//	var cfg SMTPConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	defaultEnvOnce.Do(func() {
		_ = LoadEnv()
	})
	if v == nil {
		return ErrNilPointer
	}

	typ := reflect.TypeFor[T]()

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[typ]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[typ] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reload drops the cached value for T and parses the environment again.
func Reload[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	globalCache.mu.Lock()
	delete(globalCache.values, reflect.TypeFor[T]())
	globalCache.mu.Unlock()
	return Load(v)
}

// ResetCache forgets every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	globalCache.values = make(map[reflect.Type]any)
	globalCache.mu.Unlock()
}
