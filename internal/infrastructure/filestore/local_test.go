package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, "products/p1/photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/media/products/p1/photo.png", url)

	data, err := os.ReadFile(filepath.Join(root, "products", "p1", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "products/p1/photo.png"))
	_, err = os.Stat(filepath.Join(root, "products", "p1", "photo.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "products/p1/photo.png"))
}

func TestLocal_KeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(filepath.Join(root, "media"), "/media")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "../../outside.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/outside.txt", url)

	_, err = os.Stat(filepath.Join(root, "outside.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "media", "outside.txt"))
	assert.NoError(t, err)

	_, err = store.Save(context.Background(), "", strings.NewReader("x"))
	assert.Error(t, err)
}
