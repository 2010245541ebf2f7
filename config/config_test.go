package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, MediaLocal, cfg.MediaBackend)
	assert.Equal(t, "public/images", cfg.MediaDir)
	assert.Equal(t, "/images", cfg.MediaBaseURL)
	assert.Equal(t, "/meals", cfg.ListingRoute)
	assert.Equal(t, "page-only", cfg.InvalidationScope)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8*1024*1024, cfg.BodyLimit())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/foodies")
	t.Setenv("MEDIA_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "meals")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("INVALIDATION_SCOPE", "layout")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicURL)
	assert.Equal(t, "eu-west-1", cfg.S3Region)
	assert.Equal(t, "layout", cfg.InvalidationScope)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "mongo"},
		{"media", "MEDIA_BACKEND", "ftp"},
		{"scope", "INVALIDATION_SCOPE", "everything"},
		{"route", "LISTING_ROUTE", "meals"},
		{"gcs bucket", "MEDIA_BACKEND", "gcs"},
		{"media base url", "MEDIA_BASE_URL", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
