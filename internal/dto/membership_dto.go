package dto

import (
	"time"

	"github.com/JulioFS/zforum/internal/models"
)

// MembershipStatusResponse reports the ledger state for one (user, channel)
// pair. A pending request counts as having a membership, flagged pending.
type MembershipStatusResponse struct {
	HasMembership bool       `json:"has_membership"`
	IsPending     bool       `json:"is_pending"`
	ExpiresOn     *time.Time `json:"expires_on,omitempty"`
}

// MembershipResponse represents a ledger row, used for pending-request
// listings shown to channel admins.
type MembershipResponse struct {
	UserID      uint       `json:"user_id"`
	ChannelID   uint       `json:"channel_id"`
	IsPending   bool       `json:"is_pending"`
	ExpiresOn   *time.Time `json:"expires_on,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
}

// NewMembershipResponse converts a ledger row into a DTO.
func NewMembershipResponse(m models.ChannelMembership) MembershipResponse {
	return MembershipResponse{
		UserID:      m.UserID,
		ChannelID:   m.ChannelID,
		IsPending:   m.IsNewRequest,
		ExpiresOn:   m.ExpiresOn,
		RequestedAt: m.UpdatedAt,
	}
}

// NewMembershipResponseSlice converts ledger rows into DTOs.
func NewMembershipResponseSlice(rows []models.ChannelMembership) []MembershipResponse {
	out := make([]MembershipResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewMembershipResponse(row))
	}
	return out
}
