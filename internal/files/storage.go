// Package files stores uploaded documents and images and derives thumbnails
// and resume text from them.
package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for a key with no backing object.
var ErrNotFound = errors.New("file not found")

// Storage is a flat key/value store for uploaded files.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether no file was supplied.
func (u Upload) Empty() bool { return len(u.Data) == 0 }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// UploadKey builds a dated, collision free object key such as
// "employer/2024/03/01/<uuid>-license.png".
func UploadKey(prefix, filename string, now time.Time) string {
	name := unsafeChars.ReplaceAllString(path.Base(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload"
	}
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.NewString()+"-"+name)
}

// Save writes the upload under a fresh key and returns it.
func Save(ctx context.Context, s Storage, prefix string, u Upload) (string, error) {
	key := UploadKey(prefix, u.Filename, time.Now())
	if err := s.Put(ctx, key, bytes.NewReader(u.Data), u.ContentType); err != nil {
		return "", fmt.Errorf("store %s: %w", u.Filename, err)
	}
	return key, nil
}

// DeleteAll removes the backing objects of keys, skipping empty ones. Every
// key is attempted; the first failure is returned.
func DeleteAll(ctx context.Context, s Storage, keys ...string) error {
	var firstErr error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			slog.Error("failed to delete stored file", slog.String("key", key), slog.Any("error", err))
			if firstErr == nil {
				firstErr = fmt.Errorf("delete %s: %w", key, err)
			}
		}
	}
	return firstErr
}
