package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
)

func TestHistoryStore_EncodeDecode(t *testing.T) {
	s, err := NewHistoryStore(nil)
	require.NoError(t, err)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: id.New(), Username: "owner"})
	small := audit.Entry{
		CategoryID: id.New(),
		Action:     audit.ActionUpdated,
		Details:    map[string]any{"name": map[string]any{"old": "Food", "new": "Fresh food"}},
	}

	row, err := s.encode(ctx, small)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, row.CompressionAlgo)
	assert.Equal(t, "owner", row.Actor)
	assert.False(t, id.IsNil(row.ID))
	assert.Nil(t, row.DetailsCompressed)

	back, err := s.decode(row)
	require.NoError(t, err)
	assert.Equal(t, small.Details, back.Details)

	large := audit.Entry{
		CategoryID: id.New(),
		Action:     audit.ActionUpdated,
		Details:    map[string]any{"description": strings.Repeat("shelf ", 4000)},
	}
	row, err = s.encode(ctx, large)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.Details)
	assert.Less(t, len(row.DetailsCompressed), 10*1024)

	back, err = s.decode(row)
	require.NoError(t, err)
	assert.Equal(t, large.Details, back.Details)
}

func TestHistoryStore_EmptyDetails(t *testing.T) {
	s, err := NewHistoryStore(nil)
	require.NoError(t, err)

	row, err := s.encode(context.Background(), audit.Entry{Action: audit.ActionDeleted})
	require.NoError(t, err)
	assert.Nil(t, row.Details)

	back, err := s.decode(row)
	require.NoError(t, err)
	assert.Nil(t, back.Details)
}
