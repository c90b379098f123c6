package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

func TestAccessServiceCanView(t *testing.T) {
	db := setupTestDB(t)
	channels := repository.NewChannelRepository(db)
	memberships := repository.NewMembershipRepository(db)
	access := NewAccessService(channels, memberships, zerolog.Nop())
	ctx := context.Background()

	private := models.Channel{Tag: "vault", Title: "Vault", Content: "private", IsPrivate: true}
	require.NoError(t, channels.Create(ctx, &private))
	require.NoError(t, channels.SetAdmin(ctx, private.ID, 11, true))

	public := models.Channel{Tag: "park", Title: "Park", Content: "public"}
	require.NoError(t, channels.Create(ctx, &public))

	cases := []struct {
		name    string
		id      *Identity
		channel models.Channel
		want    bool
	}{
		{"anonymous sees public", nil, public, true},
		{"anonymous denied private", nil, private, false},
		{"ordinary user denied private", &Identity{ID: 99}, private, false},
		{"channel admin sees private", &Identity{ID: 11}, private, true},
		{"system admin sees private", &Identity{ID: 1, Role: RoleSystemAdmin}, private, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanView(ctx, tc.id, tc.channel)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestAccessServiceCanPost(t *testing.T) {
	db := setupTestDB(t)
	channels := repository.NewChannelRepository(db)
	memberships := repository.NewMembershipRepository(db)
	access := NewAccessService(channels, memberships, zerolog.Nop())
	ctx := context.Background()

	gated := models.Channel{Tag: "members", Title: "Members", Content: "gated", RequiresMembership: true}
	require.NoError(t, channels.Create(ctx, &gated))
	require.NoError(t, channels.SetAdmin(ctx, gated.ID, 11, true))

	open := models.Channel{Tag: "open", Title: "Open", Content: "anyone"}
	require.NoError(t, channels.Create(ctx, &open))

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, memberships.Upsert(ctx, &models.ChannelMembership{UserID: 21, ChannelID: gated.ID, ExpiresOn: &future}))
	require.NoError(t, memberships.Upsert(ctx, &models.ChannelMembership{UserID: 22, ChannelID: gated.ID, ExpiresOn: &past}))
	require.NoError(t, memberships.Upsert(ctx, &models.ChannelMembership{UserID: 23, ChannelID: gated.ID, IsNewRequest: true}))

	cases := []struct {
		name    string
		id      *Identity
		channel models.Channel
		want    bool
	}{
		{"anonymous posts to open channel", nil, open, true},
		{"anonymous denied on gated channel", nil, gated, false},
		{"active member posts", &Identity{ID: 21}, gated, true},
		{"expired member denied", &Identity{ID: 22}, gated, false},
		{"pending request denied", &Identity{ID: 23}, gated, false},
		{"channel admin posts without membership", &Identity{ID: 11}, gated, true},
		{"system admin posts without membership", &Identity{ID: 1, Role: RoleSystemAdmin}, gated, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanPost(ctx, tc.id, tc.channel)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestAccessServiceCanAdminister(t *testing.T) {
	db := setupTestDB(t)
	channels := repository.NewChannelRepository(db)
	memberships := repository.NewMembershipRepository(db)
	access := NewAccessService(channels, memberships, zerolog.Nop())
	ctx := context.Background()

	channel := models.Channel{Tag: "board", Title: "Board", Content: "managed"}
	require.NoError(t, channels.Create(ctx, &channel))
	require.NoError(t, channels.SetAdmin(ctx, channel.ID, 11, true))
	require.NoError(t, channels.SetAdmin(ctx, channel.ID, 12, true))
	require.NoError(t, channels.SetAdmin(ctx, channel.ID, 12, false))

	got, err := access.CanAdminister(ctx, nil, channel.ID)
	require.NoError(t, err)
	require.False(t, got, "anonymous never administers")

	got, err = access.CanAdminister(ctx, &Identity{ID: 11}, channel.ID)
	require.NoError(t, err)
	require.True(t, got)

	got, err = access.CanAdminister(ctx, &Identity{ID: 12}, channel.ID)
	require.NoError(t, err)
	require.False(t, got, "revoked delegation must not administer")

	got, err = access.CanAdminister(ctx, &Identity{ID: 999, Role: "ADMIN"}, channel.ID)
	require.NoError(t, err)
	require.True(t, got, "role comparison is case-insensitive")
}
