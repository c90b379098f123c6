package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/observability"
	"github.com/JulioFS/zforum/internal/repository"
	"github.com/JulioFS/zforum/pkg/bannerfs"
)

// Tags are lowercase and limited to letters, digits and a small
// punctuation set; spaces are rejected by the pattern itself.
var tagPattern = regexp.MustCompile(`^[a-z0-9()$_.]+$`)

var allowedBannerTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// ChannelService exposes channel registry use-cases.
type ChannelService interface {
	Create(ctx context.Context, actor *Identity, payload dto.ChannelCreateRequest, banner *multipart.FileHeader) (dto.ChannelResponse, error)
	Update(ctx context.Context, channelID uint, actor *Identity, payload dto.ChannelUpdateRequest, banner *multipart.FileHeader) (dto.ChannelResponse, error)
	GetByTag(ctx context.Context, tag string, actor *Identity) (dto.ChannelResponse, error)
	List(ctx context.Context, actor *Identity, page, pageSize int) (dto.ChannelListResponse, error)
	GrantAdmin(ctx context.Context, channelID, userID uint, actor *Identity) error
	RevokeAdmin(ctx context.Context, channelID, userID uint, actor *Identity) error
	ListAdmins(ctx context.Context, channelID uint, actor *Identity) ([]dto.ChannelAdminResponse, error)
}

type channelService struct {
	channels       repository.ChannelRepository
	access         AccessService
	banners        *bannerfs.Store
	cache          *redis.Client
	cacheTTL       time.Duration
	bannerMaxBytes int64
	sanitizer      *bluemonday.Policy
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// NewChannelService constructs the channel registry service.
func NewChannelService(channels repository.ChannelRepository, access AccessService, banners *bannerfs.Store, cache *redis.Client, cacheTTL time.Duration, bannerMaxBytes int64, logger zerolog.Logger) ChannelService {
	if bannerMaxBytes <= 0 {
		bannerMaxBytes = 1_500_000
	}

	return &channelService{
		channels:       channels,
		access:         access,
		banners:        banners,
		cache:          cache,
		cacheTTL:       cacheTTL,
		bannerMaxBytes: bannerMaxBytes,
		sanitizer:      bluemonday.UGCPolicy(),
		logger:         logger.With().Str("component", "channel_service").Logger(),
		tracer:         otel.Tracer("github.com/JulioFS/zforum/internal/service/channel"),
	}
}

// Create validates every field before touching the database, so a failed
// request produces the complete error list and no partial writes.
func (s *channelService) Create(ctx context.Context, actor *Identity, payload dto.ChannelCreateRequest, banner *multipart.FileHeader) (dto.ChannelResponse, error) {
	if actor == nil {
		return dto.ChannelResponse{}, ErrNotAuthorized
	}

	ctx, span := s.tracer.Start(ctx, "channel.create", trace.WithAttributes(
		attribute.Int64("user.id", int64(actor.ID)),
	))
	defer span.End()

	ve := &ValidationError{}

	tag := strings.ToLower(strings.TrimSpace(payload.Tag))
	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))

	if title == "" {
		ve.add("title", "title is required")
	}
	if content == "" {
		ve.add("content", "channel description is required")
	}
	switch {
	case tag == "":
		ve.add("tag", "tag is required")
	case !tagPattern.MatchString(tag) || goaway.IsProfane(tag):
		ve.add("tag", "tag must not contain spaces, curse words, or invalid characters")
	default:
		exists, err := s.channels.TagExists(ctx, tag)
		if err != nil {
			span.RecordError(err)
			return dto.ChannelResponse{}, err
		}
		if exists {
			ve.add("tag", "tag already exists")
		}
	}

	bannerData, bannerName, err := s.validateBanner(banner, ve)
	if err != nil {
		span.RecordError(err)
		return dto.ChannelResponse{}, err
	}

	if err := ve.orNil(); err != nil {
		return dto.ChannelResponse{}, err
	}

	channel := models.Channel{
		Tag:                tag,
		Title:              title,
		Content:            content,
		IsPrivate:          payload.IsPrivate,
		RequiresMembership: payload.RequiresMembership,
		CreatedBy:          actor.ID,
		ModifiedBy:         actor.ID,
	}

	if err := s.channels.CreateWithAdmin(ctx, &channel, actor.ID); err != nil {
		span.RecordError(err)
		return dto.ChannelResponse{}, err
	}

	if bannerData != nil {
		if err := s.attachBanner(ctx, &channel, bannerName, bannerData); err != nil {
			span.RecordError(err)
			return dto.ChannelResponse{}, err
		}
	}

	s.logger.Info().Uint("channel_id", channel.ID).Str("tag", channel.Tag).Uint("created_by", actor.ID).Msg("channel created")

	return s.toResponse(channel, true), nil
}

// Update applies the creation validation subset; the tag is immutable.
// Replacing or explicitly removing a banner deletes the prior asset file.
func (s *channelService) Update(ctx context.Context, channelID uint, actor *Identity, payload dto.ChannelUpdateRequest, banner *multipart.FileHeader) (dto.ChannelResponse, error) {
	channel, err := s.requireChannel(ctx, channelID)
	if err != nil {
		return dto.ChannelResponse{}, err
	}

	if err := s.requireAdmin(ctx, channel.ID, actor); err != nil {
		return dto.ChannelResponse{}, err
	}

	ve := &ValidationError{}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if title == "" {
		ve.add("title", "title is required")
	}
	if content == "" {
		ve.add("content", "channel description is required")
	}

	bannerData, bannerName, err := s.validateBanner(banner, ve)
	if err != nil {
		return dto.ChannelResponse{}, err
	}

	if err := ve.orNil(); err != nil {
		return dto.ChannelResponse{}, err
	}

	channel.Title = title
	channel.Content = content
	channel.ModifiedBy = actor.ID
	if payload.IsPrivate != nil {
		channel.IsPrivate = *payload.IsPrivate
	}
	if payload.RequiresMembership != nil {
		channel.RequiresMembership = *payload.RequiresMembership
	}

	// Drop the old asset when a replacement arrived or removal was asked for.
	if channel.Banner != "" && (bannerData != nil || payload.RemoveBanner) {
		if s.banners != nil {
			if err := s.banners.Remove(channel.Banner); err != nil {
				s.logger.Warn().Err(err).Str("path", channel.Banner).Msg("failed to remove prior banner")
			}
		}
		channel.Banner = ""
	}

	if err := s.channels.Update(ctx, &channel); err != nil {
		return dto.ChannelResponse{}, err
	}

	if bannerData != nil {
		if err := s.attachBanner(ctx, &channel, bannerName, bannerData); err != nil {
			return dto.ChannelResponse{}, err
		}
	}

	s.logger.Info().Uint("channel_id", channel.ID).Uint("modified_by", actor.ID).Msg("channel updated")

	return s.toResponse(channel, true), nil
}

// GetByTag resolves a channel for display and bumps its view counter
// best-effort; a lost increment under race is acceptable.
func (s *channelService) GetByTag(ctx context.Context, tag string, actor *Identity) (dto.ChannelResponse, error) {
	channel, err := s.channels.GetByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChannelResponse{}, ErrChannelNotFound
		}
		return dto.ChannelResponse{}, err
	}

	allowed, err := s.access.CanView(ctx, actor, channel)
	if err != nil {
		return dto.ChannelResponse{}, err
	}
	if !allowed {
		return dto.ChannelResponse{}, ErrNotAuthorized
	}

	if err := s.channels.IncrementViews(ctx, channel.ID); err != nil {
		s.logger.Warn().Err(err).Uint("channel_id", channel.ID).Msg("failed to bump channel views")
	} else {
		channel.Views++
	}

	canAdmin, err := s.access.CanAdminister(ctx, actor, channel.ID)
	if err != nil {
		return dto.ChannelResponse{}, err
	}

	return s.toResponse(channel, canAdmin), nil
}

// List returns the public listing ordered by recent popularity. System
// admins see private channels as well; only the public variant is cached,
// and staleness is bounded by the cache TTL rather than invalidation.
func (s *channelService) List(ctx context.Context, actor *Identity, page, pageSize int) (dto.ChannelListResponse, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 25
	}
	if page <= 0 {
		page = 1
	}

	includePrivate := actor.IsSystemAdmin()

	cacheKey := fmt.Sprintf("channels:public:%d:%d", page, pageSize)
	if !includePrivate && s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ChannelListResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read channel listing cache")
		}
	}

	channels, total, err := s.channels.List(ctx, repository.ChannelFilter{
		IncludePrivate: includePrivate,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return dto.ChannelListResponse{}, err
	}

	items := make([]dto.ChannelResponse, 0, len(channels))
	for _, channel := range channels {
		items = append(items, s.toResponse(channel, false))
	}

	response := dto.ChannelListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}

	if !includePrivate && s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store channel listing cache")
			}
		}
	}

	return response, nil
}

func (s *channelService) GrantAdmin(ctx context.Context, channelID, userID uint, actor *Identity) error {
	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return err
	}

	if err := s.channels.SetAdmin(ctx, channelID, userID, true); err != nil {
		return err
	}

	s.logger.Info().Uint("channel_id", channelID).Uint("user_id", userID).Uint("granted_by", actor.ID).Msg("channel admin granted")
	return nil
}

func (s *channelService) RevokeAdmin(ctx context.Context, channelID, userID uint, actor *Identity) error {
	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return err
	}

	if err := s.channels.SetAdmin(ctx, channelID, userID, false); err != nil {
		return err
	}

	s.logger.Info().Uint("channel_id", channelID).Uint("user_id", userID).Uint("revoked_by", actor.ID).Msg("channel admin revoked")
	return nil
}

func (s *channelService) ListAdmins(ctx context.Context, channelID uint, actor *Identity) ([]dto.ChannelAdminResponse, error) {
	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return nil, err
	}

	admins, err := s.channels.ListAdmins(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return dto.NewChannelAdminResponseSlice(admins), nil
}

// validateBanner checks size and content type, accumulating failures into
// ve. The size boundary is inclusive: exactly bannerMaxBytes is accepted.
// On success the file bytes are returned for later persistence.
func (s *channelService) validateBanner(banner *multipart.FileHeader, ve *ValidationError) ([]byte, string, error) {
	if banner == nil {
		return nil, "", nil
	}

	if banner.Size > s.bannerMaxBytes {
		observability.BannerRejected().WithLabelValues("size").Inc()
		ve.add("banner", "upload banner too large, reduce the size and try again")
		return nil, "", nil
	}

	declared := strings.ToLower(strings.TrimSpace(banner.Header.Get("Content-Type")))
	if declared != "" {
		if _, ok := allowedBannerTypes[declared]; !ok {
			observability.BannerRejected().WithLabelValues("type").Inc()
			ve.add("banner", "only valid image files are allowed")
			return nil, "", nil
		}
	}

	handle, err := banner.Open()
	if err != nil {
		return nil, "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.bannerMaxBytes+1)); err != nil {
		return nil, "", err
	}
	if int64(buf.Len()) > s.bannerMaxBytes {
		observability.BannerRejected().WithLabelValues("size").Inc()
		ve.add("banner", "upload banner too large, reduce the size and try again")
		return nil, "", nil
	}

	sniffed := mimetype.Detect(buf.Bytes())
	if _, ok := allowedBannerTypes[sniffed.String()]; !ok {
		observability.BannerRejected().WithLabelValues("type").Inc()
		ve.add("banner", "only valid image files are allowed")
		return nil, "", nil
	}

	return buf.Bytes(), banner.Filename, nil
}

func (s *channelService) attachBanner(ctx context.Context, channel *models.Channel, filename string, data []byte) error {
	if s.banners == nil {
		return nil
	}

	relPath, err := s.banners.Save(channel.ID, filename, bytes.NewReader(data))
	if err != nil {
		return err
	}

	observability.BannerStored().Inc()

	channel.Banner = relPath
	return s.channels.Update(ctx, channel)
}

func (s *channelService) toResponse(channel models.Channel, canAdmin bool) dto.ChannelResponse {
	bannerURL := ""
	if s.banners != nil {
		// Absence on disk is a normal state, shown as no banner.
		bannerURL, _ = s.banners.URL(channel.Banner)
	}
	return dto.NewChannelResponse(channel, bannerURL, canAdmin)
}

func (s *channelService) requireChannel(ctx context.Context, channelID uint) (models.Channel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Channel{}, ErrChannelNotFound
		}
		return models.Channel{}, err
	}
	return channel, nil
}

func (s *channelService) requireAdmin(ctx context.Context, channelID uint, actor *Identity) error {
	if actor == nil {
		return ErrNotAuthorized
	}

	allowed, err := s.access.CanAdminister(ctx, actor, channelID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotAuthorized
	}
	return nil
}
