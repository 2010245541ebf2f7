package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	MediaLocal = "local"
	MediaGCS   = "gcs"
	MediaS3    = "s3"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string
	DBLogLevel  string

	MediaBackend string
	MediaDir     string
	MediaBaseURL string

	GCSProjectID string
	GCSBucket    string

	S3Bucket    string
	S3Region    string
	S3PublicURL string

	ListingRoute      string
	InvalidationScope string
	CacheSize         int
	CacheTTL          time.Duration

	BodyLimitMB   int
	MetricsStdout bool
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "foodies.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("MEDIA_BACKEND", MediaLocal)
	v.SetDefault("MEDIA_DIR", "public/images")
	v.SetDefault("MEDIA_BASE_URL", "/images")
	v.SetDefault("S3_REGION", "")
	v.SetDefault("LISTING_ROUTE", "/meals")
	v.SetDefault("INVALIDATION_SCOPE", "page-only")
	v.SetDefault("CACHE_SIZE", 256)
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("BODY_LIMIT_MB", 8)
	v.SetDefault("METRICS_STDOUT", false)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		DBLogLevel:        strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		MediaBackend:      strings.ToLower(v.GetString("MEDIA_BACKEND")),
		MediaDir:          v.GetString("MEDIA_DIR"),
		MediaBaseURL:      strings.TrimSuffix(v.GetString("MEDIA_BASE_URL"), "/"),
		GCSProjectID:      v.GetString("GSC_PROJECT_ID"),
		GCSBucket:         v.GetString("GSC_BUCKET_NAME"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Region:          v.GetString("S3_REGION"),
		S3PublicURL:       strings.TrimSuffix(v.GetString("S3_PUBLIC_URL"), "/"),
		ListingRoute:      v.GetString("LISTING_ROUTE"),
		InvalidationScope: strings.ToLower(v.GetString("INVALIDATION_SCOPE")),
		CacheSize:         v.GetInt("CACHE_SIZE"),
		CacheTTL:          v.GetDuration("CACHE_TTL"),
		BodyLimitMB:       v.GetInt("BODY_LIMIT_MB"),
		MetricsStdout:     v.GetBool("METRICS_STDOUT"),
	}

	if cfg.S3Region == "" {
		cfg.S3Region = v.GetString("AWS_REGION") // fallback
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER %q not supported", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}

	switch c.MediaBackend {
	case MediaLocal:
		if c.MediaDir == "" {
			return errors.New("MEDIA_DIR not set")
		}
		if !strings.HasPrefix(c.MediaBaseURL, "/") {
			return fmt.Errorf("MEDIA_BASE_URL %q must be a path below /", c.MediaBaseURL)
		}
	case MediaGCS:
		if c.GCSBucket == "" {
			return errors.New("GSC_BUCKET_NAME not set")
		}
	case MediaS3:
		if c.S3Bucket == "" || c.S3PublicURL == "" {
			return errors.New("S3_BUCKET and S3_PUBLIC_URL must be set")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND %q not supported", c.MediaBackend)
	}

	switch c.InvalidationScope {
	case "page-only", "page", "page-and-descendants", "layout":
	default:
		return fmt.Errorf("INVALIDATION_SCOPE %q not supported", c.InvalidationScope)
	}

	if !strings.HasPrefix(c.ListingRoute, "/") {
		return fmt.Errorf("LISTING_ROUTE %q must start with /", c.ListingRoute)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive, got %d", c.CacheSize)
	}
	if c.BodyLimitMB <= 0 {
		return fmt.Errorf("BODY_LIMIT_MB must be positive, got %d", c.BodyLimitMB)
	}
	return nil
}

// BodyLimit is the fiber request body limit in bytes.
func (c *Config) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

// MustLoad is Load for startup paths that cannot continue without config.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
