// Package media stores uploaded item images and removes them again when an intake fails.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrExists is returned by Save when an object with the same name is already stored.
var ErrExists = errors.New("media object already exists")

type Store interface {
	// Save writes body under name and returns the image path handed to clients.
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object addressed by an image path. A missing object is not an error.
	Delete(ctx context.Context, imagePath string) error
}
