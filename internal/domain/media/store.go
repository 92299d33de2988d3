// Package media defines the file storage collaborator used for product images.
package media

import (
	"context"
	"io"
	"path"
	"strings"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

// Store saves blobs under a key and returns a public URL. Content is never inspected.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// ProductImageKey builds products/<productId>/<filename>, dropping any directory part of filename.
func ProductImageKey(productID id.ID, filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." || strings.TrimSpace(base) == "" {
		return "", apperror.NewValidation("invalid file name").WithField("filename", filename)
	}
	return path.Join("products", productID.String(), base), nil
}
