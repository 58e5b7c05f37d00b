package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "lf")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "lostfound")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, "uploads/found_images", cfg.UploadDir())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.DBConnectRetry)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadNormalizesBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("MEDIA_BACKEND", " MinIO ")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio", cfg.MediaBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadClientTrimsBaseURL(t *testing.T) {
	t.Setenv("LOSTFOUND_API", "http://api.test/")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", cfg.APIBaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}

func TestMediaURLPrefixIgnoresRoot(t *testing.T) {
	tests := []struct {
		root, dir string
		wantDir   string
	}{
		{"uploads", "found_images", "uploads/found_images"},
		{"/var/lib/lostfound/", "found_images", "/var/lib/lostfound/found_images"},
		{"data", "/photos/", "data/photos"},
	}
	for _, tt := range tests {
		cfg := Config{MediaRoot: tt.root, MediaDir: tt.dir}
		assert.Equal(t, tt.wantDir, cfg.UploadDir(), tt.root)
		assert.Equal(t, "uploads/"+strings.Trim(tt.dir, "/"), cfg.MediaURLPrefix(), tt.root)
	}
}
