package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
)

// RoleSystemAdmin is the role claim that short-circuits every access check.
const RoleSystemAdmin = "admin"

// Identity describes the authenticated caller. A nil *Identity is an
// anonymous caller and never satisfies admin or membership checks.
type Identity struct {
	ID   uint
	Role string
}

// IsSystemAdmin reports whether the identity carries the system admin role.
func (i *Identity) IsSystemAdmin() bool {
	return i != nil && strings.EqualFold(strings.TrimSpace(i.Role), RoleSystemAdmin)
}

// AccessService answers the three channel permission questions. It is the
// single authority consulted before any channel-scoped mutation.
type AccessService interface {
	CanView(ctx context.Context, id *Identity, channel models.Channel) (bool, error)
	CanPost(ctx context.Context, id *Identity, channel models.Channel) (bool, error)
	CanAdminister(ctx context.Context, id *Identity, channelID uint) (bool, error)
}

type accessService struct {
	channels    repository.ChannelRepository
	memberships repository.MembershipRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAccessService constructs the access decision service.
func NewAccessService(channels repository.ChannelRepository, memberships repository.MembershipRepository, logger zerolog.Logger) AccessService {
	return &accessService{
		channels:    channels,
		memberships: memberships,
		logger:      logger.With().Str("component", "access_service").Logger(),
		now:         time.Now,
	}
}

// CanView permits public channels to anyone; private channels only to
// system admins and active channel admins. There is no shared-link bypass.
func (s *accessService) CanView(ctx context.Context, id *Identity, channel models.Channel) (bool, error) {
	if !channel.IsPrivate {
		return true, nil
	}
	if id == nil {
		return false, nil
	}
	if id.IsSystemAdmin() {
		return true, nil
	}
	return s.channels.IsActiveAdmin(ctx, channel.ID, id.ID)
}

// CanPost permits open channels to anyone; membership-gated channels
// require an active (non-pending, non-expired) membership or admin status.
func (s *accessService) CanPost(ctx context.Context, id *Identity, channel models.Channel) (bool, error) {
	if !channel.RequiresMembership {
		return true, nil
	}
	if id == nil {
		return false, nil
	}
	if id.IsSystemAdmin() {
		return true, nil
	}

	isAdmin, err := s.channels.IsActiveAdmin(ctx, channel.ID, id.ID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	return s.memberships.HasActive(ctx, channel.ID, id.ID, s.now())
}

func (s *accessService) CanAdminister(ctx context.Context, id *Identity, channelID uint) (bool, error) {
	if id == nil {
		return false, nil
	}
	if id.IsSystemAdmin() {
		return true, nil
	}
	return s.channels.IsActiveAdmin(ctx, channelID, id.ID)
}
