package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nairamart/storefront/pkg/config"
	"github.com/nairamart/storefront/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Read(ctx, KeyCart)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Write(ctx, KeyCart, []byte(`[{"id":"p1"}]`)))
	value, err := store.Read(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"p1"}]`), value)

	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Read(ctx, KeyCart)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	payload := []byte(`original`)
	require.NoError(t, store.Write(ctx, "k", payload))
	payload[0] = 'X'

	value, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`original`), value)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Path: filepath.Join(t.TempDir(), "storefront.db")}

	store, err := NewSQLite(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Read(ctx, KeyWishlist)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Write(ctx, KeyWishlist, []byte(`[]`)))
	require.NoError(t, store.Write(ctx, KeyWishlist, []byte(`[{"id":"p1"}]`)), "second write upserts")

	value, err := store.Read(ctx, KeyWishlist)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"p1"}]`), value)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Path: filepath.Join(t.TempDir(), "storefront.db")}

	store, err := NewSQLite(ctx, cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, KeyCart, []byte(`[{"id":"p1","quantity":2}]`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLite(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Read(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"p1","quantity":2}]`), value)
}
