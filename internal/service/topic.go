package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

// TopicService exposes topic and reply use-cases. Every write is gated by
// the access service against the owning channel.
type TopicService interface {
	CreateTopic(ctx context.Context, channelTag string, actor *Identity, payload dto.TopicCreateRequest) (dto.TopicResponse, error)
	CreateReply(ctx context.Context, parentID uint, actor *Identity, payload dto.ReplyCreateRequest) (dto.TopicResponse, error)
	Get(ctx context.Context, id uint, actor *Identity) (dto.TopicResponse, error)
	List(ctx context.Context, channelTag string, actor *Identity, page, pageSize int) (dto.TopicListResponse, error)
	Upvote(ctx context.Context, id uint, actor *Identity) error
	Moderate(ctx context.Context, id uint, actor *Identity, payload dto.TopicModerationRequest) (dto.TopicResponse, error)
}

type topicService struct {
	topics    repository.TopicRepository
	channels  repository.ChannelRepository
	access    AccessService
	events    EventPublisher
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewTopicService constructs the topic service.
func NewTopicService(topics repository.TopicRepository, channels repository.ChannelRepository, access AccessService, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) TopicService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &topicService{
		topics:    topics,
		channels:  channels,
		access:    access,
		events:    events,
		validator: validate,
		sanitizer: policy,
		logger:    logger.With().Str("component", "topic_service").Logger(),
		tracer:    otel.Tracer("github.com/JulioFS/zforum/internal/service/topic"),
	}
}

func (s *topicService) CreateTopic(ctx context.Context, channelTag string, actor *Identity, payload dto.TopicCreateRequest) (dto.TopicResponse, error) {
	if actor == nil {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TopicResponse{}, err
	}

	channel, err := s.channelByTag(ctx, channelTag)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	allowed, err := s.access.CanPost(ctx, actor, channel)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !allowed {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	title := s.sanitize(payload.Title)
	content := s.sanitize(payload.Content)
	if title == "" || content == "" {
		return dto.TopicResponse{}, errors.New("topic title and content must not be empty after sanitization")
	}

	ctx, span := s.tracer.Start(ctx, "topic.create", trace.WithAttributes(
		attribute.Int64("channel.id", int64(channel.ID)),
		attribute.Int64("user.id", int64(actor.ID)),
	))
	defer span.End()

	topic := models.Topic{
		ChannelID:  channel.ID,
		Title:      title,
		Content:    content,
		IsParent:   true,
		IsVisible:  true,
		Metadata:   datatypes.JSONMap{"created_by_role": actor.Role},
		CreatedBy:  actor.ID,
		ModifiedBy: actor.ID,
	}
	if err := s.topics.Create(ctx, &topic); err != nil {
		span.RecordError(err)
		return dto.TopicResponse{}, err
	}

	s.logger.Info().Uint("topic_id", topic.ID).Uint("channel_id", channel.ID).Uint("created_by", actor.ID).Msg("topic created")
	s.publish(ctx, EventTopicCreated, channel.ID, topic.ID, actor.ID)

	return dto.NewTopicResponse(topic), nil
}

// CreateReply inserts a child post. The parent must be a visible top-level
// topic; the reply inherits its channel, and posting rights are checked
// against that channel, not the one named in the request path.
func (s *topicService) CreateReply(ctx context.Context, parentID uint, actor *Identity, payload dto.ReplyCreateRequest) (dto.TopicResponse, error) {
	if actor == nil {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TopicResponse{}, err
	}

	parent, err := s.requireTopic(ctx, parentID)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !parent.IsParent {
		return dto.TopicResponse{}, ErrNotAParent
	}
	if parent.IsReadOnly {
		return dto.TopicResponse{}, ErrTopicReadOnly
	}

	channel, err := s.channels.GetByID(ctx, parent.ChannelID)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	allowed, err := s.access.CanPost(ctx, actor, channel)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !allowed {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	content := s.sanitize(payload.Content)
	if content == "" {
		return dto.TopicResponse{}, errors.New("reply content must not be empty after sanitization")
	}

	reply := models.Topic{
		ChannelID:  parent.ChannelID,
		Content:    content,
		IsParent:   false,
		ParentID:   &parent.ID,
		IsVisible:  true,
		Metadata:   datatypes.JSONMap{"created_by_role": actor.Role},
		CreatedBy:  actor.ID,
		ModifiedBy: actor.ID,
	}
	if err := s.topics.Create(ctx, &reply); err != nil {
		return dto.TopicResponse{}, err
	}

	s.logger.Info().Uint("reply_id", reply.ID).Uint("parent_id", parent.ID).Uint("created_by", actor.ID).Msg("reply created")
	s.publish(ctx, EventReplyCreated, parent.ChannelID, parent.ID, actor.ID)

	return dto.NewTopicResponse(reply), nil
}

// Get returns a topic with its replies and bumps the view counter
// best-effort. Hidden topics stay visible to channel and system admins.
func (s *topicService) Get(ctx context.Context, id uint, actor *Identity) (dto.TopicResponse, error) {
	topic, err := s.requireTopic(ctx, id)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	channel, err := s.channels.GetByID(ctx, topic.ChannelID)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	canView, err := s.access.CanView(ctx, actor, channel)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !canView {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	canAdmin, err := s.access.CanAdminister(ctx, actor, channel.ID)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !topic.IsVisible && !canAdmin {
		return dto.TopicResponse{}, ErrTopicNotFound
	}

	if err := s.topics.IncrementViews(ctx, topic.ID); err != nil {
		s.logger.Warn().Err(err).Uint("topic_id", topic.ID).Msg("failed to bump topic views")
	} else {
		topic.Views++
	}

	response := dto.NewTopicResponse(topic)
	if topic.IsParent {
		replies, err := s.topics.ListReplies(ctx, topic.ID, canAdmin)
		if err != nil {
			return dto.TopicResponse{}, err
		}
		response.Replies = dto.NewTopicResponseSlice(replies)
	}

	return response, nil
}

func (s *topicService) List(ctx context.Context, channelTag string, actor *Identity, page, pageSize int) (dto.TopicListResponse, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	if page <= 0 {
		page = 1
	}

	channel, err := s.channelByTag(ctx, channelTag)
	if err != nil {
		return dto.TopicListResponse{}, err
	}

	canView, err := s.access.CanView(ctx, actor, channel)
	if err != nil {
		return dto.TopicListResponse{}, err
	}
	if !canView {
		return dto.TopicListResponse{}, ErrNotAuthorized
	}

	canAdmin, err := s.access.CanAdminister(ctx, actor, channel.ID)
	if err != nil {
		return dto.TopicListResponse{}, err
	}

	topics, total, err := s.topics.List(ctx, repository.TopicFilter{
		ChannelID:     channel.ID,
		IncludeHidden: canAdmin,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		return dto.TopicListResponse{}, err
	}

	return dto.TopicListResponse{
		Items:      dto.NewTopicResponseSlice(topics),
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *topicService) Upvote(ctx context.Context, id uint, actor *Identity) error {
	if actor == nil {
		return ErrNotAuthorized
	}

	if _, err := s.requireTopic(ctx, id); err != nil {
		return err
	}

	return s.topics.IncrementUpvotes(ctx, id)
}

// Moderate toggles admin-only flags on a topic.
func (s *topicService) Moderate(ctx context.Context, id uint, actor *Identity, payload dto.TopicModerationRequest) (dto.TopicResponse, error) {
	topic, err := s.requireTopic(ctx, id)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	if actor == nil {
		return dto.TopicResponse{}, ErrNotAuthorized
	}
	allowed, err := s.access.CanAdminister(ctx, actor, topic.ChannelID)
	if err != nil {
		return dto.TopicResponse{}, err
	}
	if !allowed {
		return dto.TopicResponse{}, ErrNotAuthorized
	}

	flags := map[string]*bool{
		"is_visible":  payload.IsVisible,
		"is_promoted": payload.IsPromoted,
		"is_readonly": payload.IsReadOnly,
	}
	for column, value := range flags {
		if value == nil {
			continue
		}
		if err := s.topics.SetFlag(ctx, id, column, *value, actor.ID); err != nil {
			return dto.TopicResponse{}, err
		}
	}

	updated, err := s.requireTopic(ctx, id)
	if err != nil {
		return dto.TopicResponse{}, err
	}

	s.logger.Info().Uint("topic_id", id).Uint("modified_by", actor.ID).Msg("topic moderated")

	return dto.NewTopicResponse(updated), nil
}

func (s *topicService) sanitize(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func (s *topicService) channelByTag(ctx context.Context, tag string) (models.Channel, error) {
	channel, err := s.channels.GetByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Channel{}, ErrChannelNotFound
		}
		return models.Channel{}, err
	}
	return channel, nil
}

func (s *topicService) requireTopic(ctx context.Context, id uint) (models.Topic, error) {
	topic, err := s.topics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Topic{}, ErrTopicNotFound
		}
		return models.Topic{}, err
	}
	return topic, nil
}

func (s *topicService) publish(ctx context.Context, eventType string, channelID, topicID, userID uint) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, ForumEvent{Type: eventType, ChannelID: channelID, TopicID: topicID, UserID: userID})
}
