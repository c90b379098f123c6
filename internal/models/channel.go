package models

import "time"

// Channel represents a topic category users post into. The Tag is the
// URL-facing identifier and is always stored lowercase.
type Channel struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Tag                string    `gorm:"size:64;uniqueIndex;not null" json:"tag"`
	Title              string    `gorm:"size:255;not null" json:"title"`
	Content            string    `gorm:"type:text;not null" json:"content"`
	Banner             string    `gorm:"size:512" json:"banner,omitempty"`
	Views              int64     `gorm:"not null;default:0" json:"views"`
	Rank               float64   `gorm:"not null;default:0" json:"rank"`
	IsPrivate          bool      `gorm:"index;not null;default:false" json:"is_private"`
	RequiresMembership bool      `gorm:"not null;default:false" json:"requires_membership"`
	CreatedBy          uint      `gorm:"index" json:"created_by"`
	ModifiedBy         uint      `json:"modified_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ChannelAdmin delegates administrative capability over a single channel.
// Revocation flips IsActive, the row itself is never deleted.
type ChannelAdmin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_channel_admin_user_channel;not null" json:"user_id"`
	ChannelID uint      `gorm:"uniqueIndex:idx_channel_admin_user_channel;not null" json:"channel_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChannelMembership tracks the request/grant/expiry lifecycle for one
// (user, channel) pair. ExpiresOn is nil while a request is pending;
// revocation backdates it rather than deleting the row.
type ChannelMembership struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex:idx_membership_user_channel;not null" json:"user_id"`
	ChannelID    uint       `gorm:"uniqueIndex:idx_membership_user_channel;not null" json:"channel_id"`
	IsNewRequest bool       `gorm:"not null;default:false" json:"is_new_request"`
	ExpiresOn    *time.Time `gorm:"index" json:"expires_on"`
	CreatedBy    uint       `json:"created_by"`
	ModifiedBy   uint       `json:"modified_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsPending reports whether the membership is an unanswered request.
func (m ChannelMembership) IsPending() bool {
	return m.IsNewRequest
}

// IsActive reports whether the membership grants posting rights at the
// given instant. Pending requests and expired grants do not.
func (m ChannelMembership) IsActive(now time.Time) bool {
	return !m.IsNewRequest && m.ExpiresOn != nil && !m.ExpiresOn.Before(now)
}
