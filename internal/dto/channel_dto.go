package dto

import (
	"time"

	"github.com/JulioFS/zforum/internal/models"
)

// PaginationMeta describes list pagination in responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta derives pagination metadata from a total row count.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	meta := PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total}
	if pageSize > 0 {
		meta.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return meta
}

// ChannelCreateRequest is the payload for creating a channel. The banner
// file travels as a separate multipart part.
type ChannelCreateRequest struct {
	Tag                string `json:"tag" form:"tag"`
	Title              string `json:"title" form:"title"`
	Content            string `json:"content" form:"content"`
	IsPrivate          bool   `json:"is_private" form:"is_private"`
	RequiresMembership bool   `json:"requires_membership" form:"requires_membership"`
}

// ChannelUpdateRequest is the payload for updating a channel. The tag is
// immutable after creation and deliberately absent. Nil pointers leave the
// corresponding field unchanged.
type ChannelUpdateRequest struct {
	Title              string `json:"title" form:"title"`
	Content            string `json:"content" form:"content"`
	IsPrivate          *bool  `json:"is_private" form:"is_private"`
	RequiresMembership *bool  `json:"requires_membership" form:"requires_membership"`
	RemoveBanner       bool   `json:"remove_banner" form:"remove_banner"`
}

// ChannelResponse is the serialized representation of a channel.
type ChannelResponse struct {
	ID                 uint      `json:"id"`
	Tag                string    `json:"tag"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	BannerURL          string    `json:"banner_url,omitempty"`
	Views              int64     `json:"views"`
	Rank               float64   `json:"rank"`
	IsPrivate          bool      `json:"is_private"`
	RequiresMembership bool      `json:"requires_membership"`
	CanAdminister      bool      `json:"can_administer"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewChannelResponse converts a model into a DTO. bannerURL is empty when
// no banner asset exists on disk.
func NewChannelResponse(channel models.Channel, bannerURL string, canAdminister bool) ChannelResponse {
	return ChannelResponse{
		ID:                 channel.ID,
		Tag:                channel.Tag,
		Title:              channel.Title,
		Content:            channel.Content,
		BannerURL:          bannerURL,
		Views:              channel.Views,
		Rank:               channel.Rank,
		IsPrivate:          channel.IsPrivate,
		RequiresMembership: channel.RequiresMembership,
		CanAdminister:      canAdminister,
		CreatedAt:          channel.CreatedAt,
		UpdatedAt:          channel.UpdatedAt,
	}
}

// ChannelListResponse wraps a page of channels.
type ChannelListResponse struct {
	Items      []ChannelResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
	CacheHit   bool              `json:"cache_hit,omitempty"`
}

// ChannelAdminResponse represents an active admin delegation.
type ChannelAdminResponse struct {
	UserID    uint      `json:"user_id"`
	ChannelID uint      `json:"channel_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChannelAdminResponseSlice converts admin rows into DTOs.
func NewChannelAdminResponseSlice(admins []models.ChannelAdmin) []ChannelAdminResponse {
	out := make([]ChannelAdminResponse, 0, len(admins))
	for _, admin := range admins {
		out = append(out, ChannelAdminResponse{
			UserID:    admin.UserID,
			ChannelID: admin.ChannelID,
			CreatedAt: admin.CreatedAt,
		})
	}
	return out
}
