// Package storage keeps uploaded images behind a backend-neutral key.
// Rows store keys such as "form-returns/<uuid>.jpg"; URLs are derived by the
// active backend at response time.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

type Object struct {
	Key     string
	ModTime time.Time
}

type ImageStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	URL(key string) string
}

// NewKey returns a fresh key inside folder.
func NewKey(folder, ext string) string {
	return folder + "/" + uuid.NewString() + ext
}

// cleanKey rejects absolute paths and parent traversal.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c != key || c == "." || strings.HasPrefix(c, "../") || c == ".." {
		return "", ErrInvalidKey
	}
	return c, nil
}
