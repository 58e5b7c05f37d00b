package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// LocalStore keeps images in a flat directory served statically under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore creates dir if needed. urlPrefix is the relative path clients see,
// e.g. "uploads/found_images".
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.Trim(urlPrefix, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, name string, body io.Reader, _ int64, _ string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid media name %q", name)
	}
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrExists
		}
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(full)
		return "", err
	}
	return path.Join(s.urlPrefix, name), nil
}

func (s *LocalStore) Delete(_ context.Context, imagePath string) error {
	if imagePath == "" {
		return nil
	}
	name := path.Base(strings.ReplaceAll(imagePath, `\`, "/"))
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	log.Debug().Str("image_path", imagePath).Msg("image removed")
	return nil
}
