package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/models"
)

func TestMembershipRepositoryUpsertKeepsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	request := models.ChannelMembership{UserID: 1, ChannelID: 2, IsNewRequest: true, CreatedBy: 1, ModifiedBy: 1}
	require.NoError(t, repo.Upsert(ctx, &request))

	again := models.ChannelMembership{UserID: 1, ChannelID: 2, IsNewRequest: true, CreatedBy: 1, ModifiedBy: 1}
	require.NoError(t, repo.Upsert(ctx, &again))

	var count int64
	require.NoError(t, db.Model(&models.ChannelMembership{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	got, err := repo.Get(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, got.IsPending())
	require.Nil(t, got.ExpiresOn)
}

func TestMembershipRepositoryUpsertTransitionsToGranted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 4, ChannelID: 9, IsNewRequest: true}))

	expires := time.Now().Add(24 * time.Hour).UTC()
	granted := models.ChannelMembership{UserID: 4, ChannelID: 9, IsNewRequest: false, ExpiresOn: &expires, ModifiedBy: 2}
	require.NoError(t, repo.Upsert(ctx, &granted))

	got, err := repo.Get(ctx, 9, 4)
	require.NoError(t, err)
	require.False(t, got.IsPending())
	require.NotNil(t, got.ExpiresOn)
	require.True(t, got.IsActive(time.Now()))

	var count int64
	require.NoError(t, db.Model(&models.ChannelMembership{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestMembershipRepositoryHasActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()
	now := time.Now()

	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 1, ChannelID: 1, ExpiresOn: &future}))
	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 2, ChannelID: 1, ExpiresOn: &past}))
	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 3, ChannelID: 1, IsNewRequest: true}))

	active, err := repo.HasActive(ctx, 1, 1, now)
	require.NoError(t, err)
	require.True(t, active)

	expired, err := repo.HasActive(ctx, 1, 2, now)
	require.NoError(t, err)
	require.False(t, expired)

	pending, err := repo.HasActive(ctx, 1, 3, now)
	require.NoError(t, err)
	require.False(t, pending)
}

func TestMembershipRepositoryListPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMembershipRepository(db)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 1, ChannelID: 5, IsNewRequest: true}))
	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 2, ChannelID: 5, ExpiresOn: &expires}))
	require.NoError(t, repo.Upsert(ctx, &models.ChannelMembership{UserID: 3, ChannelID: 6, IsNewRequest: true}))

	pending, err := repo.ListPending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, uint(1), pending[0].UserID)
}
