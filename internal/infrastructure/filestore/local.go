// Package filestore keeps media blobs on the local disk and serves them under a URL prefix.
package filestore

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

	"shopledger/internal/domain/media"
	"shopledger/pkg/logger"
)

// Local implements media.Store under a root directory.
type Local struct {
	root    string
	baseURL string
}

var _ media.Store = (*Local)(nil)

// NewLocal creates the root directory when missing. baseURL is the public
// prefix the HTTP layer serves root under, e.g. "/media".
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory blobs are written under.
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty media key %q", key)
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// Save writes r through a temporary file and renames it into place, so a
// reader never sees a partial blob.
func (l *Local) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	target, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write media: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close media: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("store media: %w", err)
	}

	logger.Debug(ctx, "media saved", "key", key, "bytes", n)
	return l.baseURL + "/" + strings.TrimPrefix(path.Clean("/"+key), "/"), nil
}

// Delete removes the blob; a missing blob is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
