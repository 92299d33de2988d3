package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
)

func TestProductImageKey(t *testing.T) {
	pid := id.MustParse("0190d6a4-7b1e-7cc0-9d39-1f2e3a4b5c6d")

	key, err := ProductImageKey(pid, "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "products/0190d6a4-7b1e-7cc0-9d39-1f2e3a4b5c6d/photo.png", key)

	key, err = ProductImageKey(pid, "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "products/0190d6a4-7b1e-7cc0-9d39-1f2e3a4b5c6d/passwd", key)

	_, err = ProductImageKey(pid, "..")
	assert.Error(t, err)
}
