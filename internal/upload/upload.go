// Package upload stores todo image attachments on local disk. Files are
// renamed to a timestamp to avoid collisions and are served back statically
// under /uploads.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedImage is returned for files that are not jpeg/jpg/png/gif.
var ErrUnsupportedImage = errors.New("only image files are allowed")

// ErrFileTooLarge is returned when the upload exceeds the size limit.
var ErrFileTooLarge = errors.New("image exceeds maximum upload size")

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// Store saves uploaded images under a local directory.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the uploads directory if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Save validates and persists the uploaded image, returning the public
// path (/uploads/<name>) to store on the todo.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedImage
	}
	if fh.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	// io.LimitReader guards against a client lying about Content-Length.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(dst.Name())
		return "", ErrFileTooLarge
	}
	return "/uploads/" + name, nil
}

// Dir returns the directory served statically under /uploads.
func (s *Store) Dir() string {
	return s.dir
}
