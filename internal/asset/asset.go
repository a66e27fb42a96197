// Package asset stores uploaded avatars.  LocalStore writes them under a
// directory served by the HTTP server; RemoteUploader forwards them to an
// upload service and returns the URL it answers with.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxAvatarBytes caps the size of a stored avatar.
const MaxAvatarBytes = 5 << 20

// ErrUnsupportedType is returned for files whose extension is not an image.
var ErrUnsupportedType = errors.New("asset: unsupported file type")

// ErrTooLarge is returned when the body exceeds MaxAvatarBytes.
var ErrTooLarge = errors.New("asset: file too large")

// ErrForeignURL is returned by Remove for a URL this store did not issue.
var ErrForeignURL = errors.New("asset: url not served by this store")

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// objectName picks a fresh storage name that keeps the upload's extension.
func objectName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] {
		return "", ErrUnsupportedType
	}
	return uuid.NewString() + ext, nil
}

// LocalStore writes avatars into Dir and serves them from BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	name, err := objectName(filename)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("asset: mkdir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("asset: create: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(body, MaxAvatarBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxAvatarBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return s.BaseURL + "/" + name, nil
}

// Remove deletes an avatar previously returned by Upload.  A file that is
// already gone is not an error.
func (s *LocalStore) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return ErrForeignURL
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("asset: remove: %w", err)
	}
	return nil
}
