package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/observability"
	"github.com/JulioFS/zforum/internal/repository"
)

// Rank formula weights. Rank is a display/search aid, recomputed out of
// band rather than on every mutation.
const (
	rankWeightViews   = 0.15
	rankWeightTopics  = 0.50
	rankWeightReplies = 0.35
)

// RankService recomputes the derived channel rank score in batches.
type RankService interface {
	Refresh(ctx context.Context) error
	Start(ctx context.Context)
}

type rankService struct {
	channels repository.ChannelRepository
	interval time.Duration
	logger   zerolog.Logger
}

// NewRankService constructs the batch rank refresher.
func NewRankService(channels repository.ChannelRepository, interval time.Duration, logger zerolog.Logger) RankService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &rankService{
		channels: channels,
		interval: interval,
		logger:   logger.With().Str("component", "rank_service").Logger(),
	}
}

// Refresh recomputes and stores the rank for every channel.
func (s *rankService) Refresh(ctx context.Context) error {
	counts, err := s.channels.Counts(ctx)
	if err != nil {
		return err
	}

	for _, c := range counts {
		rank := ComputeRank(c.Views, c.TopicCount, c.ReplyCount)
		if err := s.channels.SetRank(ctx, c.ChannelID, rank); err != nil {
			s.logger.Warn().Err(err).Uint("channel_id", c.ChannelID).Msg("failed to store channel rank")
		}
	}

	observability.RankRefreshes().Inc()
	s.logger.Debug().Int("channels", len(counts)).Msg("channel ranks refreshed")

	return nil
}

// Start runs Refresh on the configured interval until ctx is cancelled.
func (s *rankService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("rank refresh failed")
				}
			}
		}
	}()
}

// ComputeRank exposes the formula for reuse and tests.
func ComputeRank(views, topics, replies int64) float64 {
	return rankWeightViews*float64(views) +
		rankWeightTopics*float64(topics) +
		rankWeightReplies*float64(replies)
}
