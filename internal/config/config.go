// Package config loads process configuration from the environment, an
// optional .env file and an optional flat config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/resumestore/pkg/logger"
	"github.com/dmitrymomot/resumestore/pkg/storage"
)

// Storage drivers.
const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

var (
	ErrLoad    = errors.New("config: load failed")
	ErrInvalid = errors.New("config: invalid")
)

// Config is the full process configuration.
type Config struct {
	Storage StorageConfig
	HTTP    HTTPConfig
	Auth    AuthConfig
	Events  EventsConfig
	Log     logger.Config
}

// StorageConfig configures the bucket and the upload policy.
type StorageConfig struct {
	Driver          string `env:"STORAGE_DRIVER" envDefault:"s3"`
	Bucket          string `env:"STORAGE_BUCKET,required,notEmpty"`
	PublicURL       string `env:"STORAGE_URL,required,notEmpty"`
	Endpoint        string `env:"STORAGE_ENDPOINT"`
	Region          string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKey       string `env:"STORAGE_ACCESS_KEY"`
	SecretKey       string `env:"STORAGE_SECRET_KEY"`
	CacheControl    string `env:"STORAGE_CACHE_CONTROL"`
	ObjectACL       string `env:"STORAGE_OBJECT_ACL"`
	MaxUploadBytes  int64  `env:"STORAGE_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxResumePages  int    `env:"STORAGE_MAX_RESUME_PAGES" envDefault:"20"`
	SkipBucketCheck bool   `env:"STORAGE_SKIP_BUCKET_CHECK"`
	PathStyle       bool   `env:"STORAGE_PATH_STYLE"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
}

// EventsConfig configures lifecycle event publishing. Empty AMQPURL disables it.
type EventsConfig struct {
	AMQPURL  string `env:"EVENTS_AMQP_URL"`
	Exchange string `env:"EVENTS_EXCHANGE" envDefault:"storage_events"`
}

// Load reads .env (if present), then configFile (if set), then the process
// environment. Later sources win.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrLoad, err)
	}
	return LoadFrom(env.ToMap(os.Environ()), configFile)
}

// LoadFrom builds a Config from the given variables layered over configFile.
func LoadFrom(environ map[string]string, configFile string) (*Config, error) {
	vars := make(map[string]string)
	if configFile != "" {
		fileVars, err := readFile(configFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range environ {
		vars[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	if !slices.Contains([]string{DriverS3, DriverMinio, DriverMemory}, c.Storage.Driver) {
		return fmt.Errorf("%w: STORAGE_DRIVER must be one of s3, minio, memory; got %q", ErrInvalid, c.Storage.Driver)
	}
	if c.Storage.Driver == DriverMinio && (c.Storage.Endpoint == "" || c.Storage.AccessKey == "") {
		return fmt.Errorf("%w: minio driver needs STORAGE_ENDPOINT and STORAGE_ACCESS_KEY", ErrInvalid)
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		return fmt.Errorf("%w: STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY must be set together", ErrInvalid)
	}
	if _, err := storage.ParseACL(c.Storage.ObjectACL); err != nil {
		return fmt.Errorf("%w: STORAGE_OBJECT_ACL must be private or public-read; got %q", ErrInvalid, c.Storage.ObjectACL)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: STORAGE_MAX_UPLOAD_BYTES must be positive", ErrInvalid)
	}
	return nil
}

// RequireAuth reports an error unless a JWT secret is configured. Only the
// HTTP server needs one.
func (c *Config) RequireAuth() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("%w: AUTH_JWT_SECRET must be at least 32 bytes", ErrInvalid)
	}
	return nil
}
