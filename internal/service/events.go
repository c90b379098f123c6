package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Forum event types published on the bus.
const (
	EventTopicCreated        = "topic.created"
	EventReplyCreated        = "reply.created"
	EventMembershipRequested = "membership.requested"
	EventMembershipGranted   = "membership.granted"
	EventMembershipRevoked   = "membership.revoked"
)

// ForumEvent is the payload mirrored to NATS and the redis stream.
type ForumEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ChannelID uint      `json:"channel_id,omitempty"`
	TopicID   uint      `json:"topic_id,omitempty"`
	UserID    uint      `json:"user_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// EventPublisher fans forum events out to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event ForumEvent)
}

type eventPublisher struct {
	nats        *nats.Conn
	redis       *redis.Client
	subjectBase string
	streamKey   string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEventPublisher constructs a fire-and-forget publisher. Either backend
// may be nil; publishing then degrades to the remaining one, or to a no-op.
func NewEventPublisher(natsConn *nats.Conn, redisClient *redis.Client, subjectBase string, logger zerolog.Logger) EventPublisher {
	base := strings.TrimSpace(subjectBase)
	if base == "" {
		base = "zforum"
	}

	return &eventPublisher{
		nats:        natsConn,
		redis:       redisClient,
		subjectBase: strings.ReplaceAll(base, ":", "."),
		streamKey:   base + ":events",
		logger:      logger.With().Str("component", "event_publisher").Logger(),
		now:         time.Now,
	}
}

// Publish never blocks the request path on delivery problems; failures are
// logged and dropped.
func (p *eventPublisher) Publish(ctx context.Context, event ForumEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.SentAt.IsZero() {
		event.SentAt = p.now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to encode forum event")
		return
	}

	if p.nats != nil {
		subject := p.subjectBase + "." + event.Type
		if err := p.nats.Publish(subject, payload); err != nil {
			p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish forum event to nats")
		}
	}

	if p.redis != nil {
		err := p.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: p.streamKey,
			Values: map[string]interface{}{"event": string(payload)},
		}).Err()
		if err != nil {
			p.logger.Warn().Err(err).Str("stream", p.streamKey).Msg("failed to mirror forum event to redis")
		}
	}
}
