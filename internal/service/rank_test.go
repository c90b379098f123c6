package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

func TestComputeRank(t *testing.T) {
	require.InDelta(t, 0.0, ComputeRank(0, 0, 0), 0.0001)
	require.InDelta(t, 0.15, ComputeRank(1, 0, 0), 0.0001)
	require.InDelta(t, 0.50, ComputeRank(0, 1, 0), 0.0001)
	require.InDelta(t, 0.35, ComputeRank(0, 0, 1), 0.0001)
	require.InDelta(t, 100*0.15+20*0.50+40*0.35, ComputeRank(100, 20, 40), 0.0001)
}

func TestRankRefreshStoresComputedScores(t *testing.T) {
	db := setupTestDB(t)
	channels := repository.NewChannelRepository(db)
	topics := repository.NewTopicRepository(db)
	ctx := context.Background()

	busy := models.Channel{Tag: "busy", Title: "Busy", Content: "active", Views: 100}
	quiet := models.Channel{Tag: "quiet", Title: "Quiet", Content: "idle"}
	require.NoError(t, channels.Create(ctx, &busy))
	require.NoError(t, channels.Create(ctx, &quiet))

	parent := models.Topic{ChannelID: busy.ID, Title: "t", Content: "c", IsParent: true, IsVisible: true}
	require.NoError(t, topics.Create(ctx, &parent))
	reply := models.Topic{ChannelID: busy.ID, Content: "r", ParentID: &parent.ID, IsVisible: true}
	require.NoError(t, topics.Create(ctx, &reply))

	svc := NewRankService(channels, 0, zerolog.Nop())
	require.NoError(t, svc.Refresh(ctx))

	got, err := channels.GetByID(ctx, busy.ID)
	require.NoError(t, err)
	require.InDelta(t, ComputeRank(100, 1, 1), got.Rank, 0.0001)

	got, err = channels.GetByID(ctx, quiet.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.0, got.Rank, 0.0001)
}
