package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestEventPublisherMirrorsToRedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	publisher := NewEventPublisher(nil, client, "zforum", zerolog.Nop())
	publisher.Publish(context.Background(), ForumEvent{
		Type:      EventTopicCreated,
		ChannelID: 3,
		TopicID:   7,
		UserID:    21,
	})

	entries, err := client.XRange(context.Background(), "zforum:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, ok := entries[0].Values["event"].(string)
	require.True(t, ok)

	var event ForumEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	require.Equal(t, EventTopicCreated, event.Type)
	require.Equal(t, uint(7), event.TopicID)
	require.NotEmpty(t, event.ID, "missing id is filled in")
	require.False(t, event.SentAt.IsZero())
}

func TestEventPublisherToleratesMissingBackends(t *testing.T) {
	publisher := NewEventPublisher(nil, nil, "", zerolog.Nop())
	// No backends configured: publishing is a logged no-op, never a panic.
	publisher.Publish(context.Background(), ForumEvent{Type: EventMembershipGranted})
}
