package dto

import (
	"time"

	"github.com/JulioFS/zforum/internal/models"
)

// TopicCreateRequest is the payload for a new top-level topic.
type TopicCreateRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=255"`
	Content string `json:"content" validate:"required,min=1"`
}

// ReplyCreateRequest is the payload for a reply under an existing topic.
type ReplyCreateRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// TopicModerationRequest toggles admin-only topic flags. Nil pointers
// leave the corresponding flag unchanged.
type TopicModerationRequest struct {
	IsVisible  *bool `json:"is_visible"`
	IsPromoted *bool `json:"is_promoted"`
	IsReadOnly *bool `json:"is_readonly"`
}

// TopicResponse is the serialized representation of a topic or reply.
type TopicResponse struct {
	ID         uint            `json:"id"`
	ChannelID  uint            `json:"channel_id"`
	Title      string          `json:"title,omitempty"`
	Content    string          `json:"content"`
	IsParent   bool            `json:"is_parent"`
	ParentID   *uint           `json:"parent_id,omitempty"`
	IsVisible  bool            `json:"is_visible"`
	IsPromoted bool            `json:"is_promoted"`
	IsReadOnly bool            `json:"is_readonly"`
	Views      int64           `json:"views"`
	Upvotes    int64           `json:"upvotes"`
	CreatedBy  uint            `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Replies    []TopicResponse `json:"replies,omitempty"`
}

// NewTopicResponse converts a model into a DTO.
func NewTopicResponse(topic models.Topic) TopicResponse {
	return TopicResponse{
		ID:         topic.ID,
		ChannelID:  topic.ChannelID,
		Title:      topic.Title,
		Content:    topic.Content,
		IsParent:   topic.IsParent,
		ParentID:   topic.ParentID,
		IsVisible:  topic.IsVisible,
		IsPromoted: topic.IsPromoted,
		IsReadOnly: topic.IsReadOnly,
		Views:      topic.Views,
		Upvotes:    topic.Upvotes,
		CreatedBy:  topic.CreatedBy,
		CreatedAt:  topic.CreatedAt,
		UpdatedAt:  topic.UpdatedAt,
	}
}

// NewTopicResponseSlice converts a slice of models into DTOs.
func NewTopicResponseSlice(topics []models.Topic) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, topic := range topics {
		out = append(out, NewTopicResponse(topic))
	}
	return out
}

// TopicListResponse wraps a page of topics within a channel.
type TopicListResponse struct {
	Items      []TopicResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}
