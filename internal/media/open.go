package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shinyyama/reconnect/internal/config"
)

// Open builds the store selected by MEDIA_BACKEND. The local store returns
// relative "uploads/found_images/..." paths; gcs and minio return absolute URLs.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case "", "local":
		return NewLocalStore(cfg.UploadDir(), cfg.MediaURLPrefix())
	case "gcs":
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.MediaURLPrefix(), cfg.GCSCredentialsFile)
	case "minio":
		return NewMinIOStore(cfg.MinIOEndpoint, cfg.MinIOPublicEndpoint, cfg.MinIOAccessKey,
			cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MediaURLPrefix(), cfg.MinIOUseSSL)
	default:
		return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}

// StaticRoot is the directory to serve under /uploads, or "" for remote backends.
func StaticRoot(cfg *config.Config) string {
	if cfg.MediaBackend != "" && cfg.MediaBackend != "local" {
		return ""
	}
	return strings.TrimSuffix(cfg.MediaRoot, "/")
}

// Close releases the store's client if it holds one.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
