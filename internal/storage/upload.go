// Package storage saves uploaded images to local disk and hands back their
// public URLs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size cap.
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedType is returned when an upload's MIME type is not in the
// configured whitelist.
var ErrUnsupportedType = errors.New("unsupported file type")

// ImageStore writes uploaded images under Dir using random file names and
// builds public URLs under BaseURL/uploads/.
type ImageStore struct {
	Dir     string
	BaseURL string
	MaxSize int64
	allowed map[string]bool
}

// NewImageStore builds an ImageStore.  allowedMIME is a comma-separated
// whitelist such as "image/jpeg,image/png,image/webp".  The upload directory
// is created if missing.
func NewImageStore(dir, baseURL string, maxSize int64, allowedMIME string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	allowed := map[string]bool{}
	for _, m := range strings.Split(allowedMIME, ",") {
		m = strings.TrimSpace(strings.ToLower(m))
		if m != "" {
			allowed[m] = true
		}
	}
	return &ImageStore{
		Dir:     dir,
		BaseURL: strings.TrimRight(baseURL, "/"),
		MaxSize: maxSize,
		allowed: allowed,
	}, nil
}

// Save validates and persists one multipart file, returning its public URL.
// The stored name is a random UUID plus the original extension, so uploads
// can never collide or traverse paths.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.MaxSize > 0 && fh.Size > s.MaxSize {
		return "", ErrFileTooLarge
	}
	mime := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if len(s.allowed) > 0 && !s.allowed[mime] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return s.BaseURL + "/uploads/" + name, nil
}
