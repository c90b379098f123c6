package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/dto"
	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

// MembershipService drives the request/grant/expiry lifecycle for channel
// memberships. Rows are upserted, never deleted; revocation backdates the
// expiry so history stays intact.
type MembershipService interface {
	Request(ctx context.Context, channelID uint, id *Identity) error
	Grant(ctx context.Context, channelID, userID uint, actor *Identity) error
	Revoke(ctx context.Context, channelID, userID uint, actor *Identity) error
	Status(ctx context.Context, channelID uint, id *Identity) (dto.MembershipStatusResponse, error)
	ListPending(ctx context.Context, channelID uint, actor *Identity) ([]dto.MembershipResponse, error)
}

type membershipService struct {
	memberships repository.MembershipRepository
	channels    repository.ChannelRepository
	access      AccessService
	events      EventPublisher
	term        time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewMembershipService constructs the ledger service. termYears is the
// grant horizon; the same span backdates revocations.
func NewMembershipService(memberships repository.MembershipRepository, channels repository.ChannelRepository, access AccessService, events EventPublisher, termYears int, logger zerolog.Logger) MembershipService {
	if termYears <= 0 {
		termYears = 10
	}

	return &membershipService{
		memberships: memberships,
		channels:    channels,
		access:      access,
		events:      events,
		term:        time.Duration(termYears) * 365 * 24 * time.Hour,
		logger:      logger.With().Str("component", "membership_service").Logger(),
		tracer:      otel.Tracer("github.com/JulioFS/zforum/internal/service/membership"),
		now:         time.Now,
	}
}

// Request records a pending membership request. Calling it twice for the
// same pair leaves exactly one ledger row.
func (s *membershipService) Request(ctx context.Context, channelID uint, id *Identity) error {
	if id == nil {
		return ErrNotAuthorized
	}

	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "membership.request", trace.WithAttributes(
		attribute.Int64("channel.id", int64(channelID)),
		attribute.Int64("user.id", int64(id.ID)),
	))
	defer span.End()

	row := models.ChannelMembership{
		UserID:       id.ID,
		ChannelID:    channelID,
		IsNewRequest: true,
		ExpiresOn:    nil,
		CreatedBy:    id.ID,
		ModifiedBy:   id.ID,
	}
	if err := s.memberships.Upsert(ctx, &row); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.Info().Uint("channel_id", channelID).Uint("user_id", id.ID).Msg("membership requested")
	s.publish(ctx, EventMembershipRequested, channelID, id.ID)

	return nil
}

// Grant activates a membership until now+term. The pending flag is always
// cleared together with the expiry, so a granted membership can never read
// back as pending.
func (s *membershipService) Grant(ctx context.Context, channelID, userID uint, actor *Identity) error {
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return err
	}

	expires := s.now().Add(s.term)
	row := models.ChannelMembership{
		UserID:       userID,
		ChannelID:    channelID,
		IsNewRequest: false,
		ExpiresOn:    &expires,
		CreatedBy:    actor.ID,
		ModifiedBy:   actor.ID,
	}
	if err := s.memberships.Upsert(ctx, &row); err != nil {
		return err
	}

	s.logger.Info().Uint("channel_id", channelID).Uint("user_id", userID).Time("expires_on", expires).Msg("membership granted")
	s.publish(ctx, EventMembershipGranted, channelID, userID)

	return nil
}

// Revoke expires the membership immediately by backdating the expiry one
// full term. The row is kept so the grant history remains queryable.
func (s *membershipService) Revoke(ctx context.Context, channelID, userID uint, actor *Identity) error {
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return err
	}

	expired := s.now().Add(-s.term)
	row := models.ChannelMembership{
		UserID:       userID,
		ChannelID:    channelID,
		IsNewRequest: false,
		ExpiresOn:    &expired,
		CreatedBy:    actor.ID,
		ModifiedBy:   actor.ID,
	}
	if err := s.memberships.Upsert(ctx, &row); err != nil {
		return err
	}

	s.logger.Info().Uint("channel_id", channelID).Uint("user_id", userID).Msg("membership revoked")
	s.publish(ctx, EventMembershipRevoked, channelID, userID)

	return nil
}

// Status reports the ledger state for the caller. System and channel
// admins read as always-active; the ledger is consulted only for ordinary
// users.
func (s *membershipService) Status(ctx context.Context, channelID uint, id *Identity) (dto.MembershipStatusResponse, error) {
	if id == nil {
		return dto.MembershipStatusResponse{}, nil
	}

	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return dto.MembershipStatusResponse{}, err
	}

	isAdmin, err := s.access.CanAdminister(ctx, id, channelID)
	if err != nil {
		return dto.MembershipStatusResponse{}, err
	}
	if isAdmin {
		return dto.MembershipStatusResponse{HasMembership: true}, nil
	}

	row, err := s.memberships.Get(ctx, channelID, id.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MembershipStatusResponse{}, nil
		}
		return dto.MembershipStatusResponse{}, err
	}

	if row.IsPending() {
		return dto.MembershipStatusResponse{HasMembership: true, IsPending: true}, nil
	}

	return dto.MembershipStatusResponse{
		HasMembership: row.IsActive(s.now()),
		ExpiresOn:     row.ExpiresOn,
	}, nil
}

func (s *membershipService) ListPending(ctx context.Context, channelID uint, actor *Identity) ([]dto.MembershipResponse, error) {
	if err := s.requireAdmin(ctx, channelID, actor); err != nil {
		return nil, err
	}

	rows, err := s.memberships.ListPending(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return dto.NewMembershipResponseSlice(rows), nil
}

func (s *membershipService) requireChannel(ctx context.Context, channelID uint) (models.Channel, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Channel{}, ErrChannelNotFound
		}
		return models.Channel{}, err
	}
	return channel, nil
}

func (s *membershipService) requireAdmin(ctx context.Context, channelID uint, actor *Identity) error {
	if actor == nil {
		return ErrNotAuthorized
	}

	if _, err := s.requireChannel(ctx, channelID); err != nil {
		return err
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

func (s *membershipService) publish(ctx context.Context, eventType string, channelID, userID uint) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, ForumEvent{Type: eventType, ChannelID: channelID, UserID: userID})
}
