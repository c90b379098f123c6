package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/repository"
)

func TestSettingsSeedAndGet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(repository.NewSettingRepository(db), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))

	require.Equal(t, "50", svc.Get(ctx, "topics_per_page", "999"))
	require.Equal(t, "fallback", svc.Get(ctx, "does_not_exist", "fallback"))

	settings, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, settings)
}

func TestSettingsSetUpdatesExistingOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(repository.NewSettingRepository(db), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))

	updated, err := svc.Set(ctx, "channels_per_page", "40")
	require.NoError(t, err)
	require.Equal(t, "40", updated.Value)
	require.Equal(t, "40", svc.Get(ctx, "channels_per_page", ""))

	_, err = svc.Set(ctx, "unknown_setting", "1")
	require.ErrorIs(t, err, ErrSettingNotFound)
}
