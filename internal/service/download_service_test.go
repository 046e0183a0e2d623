package service

import (
	"context"
	"testing"

	"app/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrInitReturnsUnpersistedDefault(t *testing.T) {
	downloads := newFakeDownloadRepo()
	svc := NewDownloadService(downloads)

	d, err := svc.GetOrInit(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Count)
	assert.Equal(t, model.DefaultMaxDownloads, d.MaxAllowed)

	// Reading must not create a record.
	stored, err := downloads.GetByUserAndProduct(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestTryIncrementPersistsOnFirstUse(t *testing.T) {
	downloads := newFakeDownloadRepo()
	svc := NewDownloadService(downloads)

	d, err := svc.TryIncrement(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, model.DefaultMaxDownloads, d.MaxAllowed)

	stored, err := downloads.GetByUserAndProduct(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Count)
}

func TestTryIncrementStopsAtCap(t *testing.T) {
	downloads := newFakeDownloadRepo()
	svc := NewDownloadService(downloads)

	ctx := context.Background()
	for i := 1; i <= model.DefaultMaxDownloads; i++ {
		d, err := svc.TryIncrement(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, i, d.Count)
	}

	_, err := svc.TryIncrement(ctx, 1, 2)
	require.ErrorIs(t, err, ErrQuotaExhausted)

	stored, err := downloads.GetByUserAndProduct(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxDownloads, stored.Count)
}

func TestTryIncrementTracksPairsIndependently(t *testing.T) {
	downloads := newFakeDownloadRepo()
	svc := NewDownloadService(downloads)

	ctx := context.Background()
	for i := 0; i < model.DefaultMaxDownloads; i++ {
		_, err := svc.TryIncrement(ctx, 1, 2)
		require.NoError(t, err)
	}

	// A different product, and a different user, still have full quota.
	d, err := svc.TryIncrement(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Count)

	d, err = svc.TryIncrement(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Count)
}
