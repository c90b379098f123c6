package models

import (
	"time"

	"gorm.io/datatypes"
)

// Topic stores both top-level topics and their replies in a single table.
// IsParent discriminates the two; a reply carries the parent's ID and the
// parent must itself be a top-level topic in the same channel, enforced at
// the write boundary in the topic service.
type Topic struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ChannelID  uint              `gorm:"index;not null" json:"channel_id"`
	Title      string            `gorm:"size:255" json:"title"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	IsParent   bool              `gorm:"index;not null" json:"is_parent"`
	ParentID   *uint             `gorm:"index" json:"parent_id"`
	IsVisible  bool              `gorm:"not null;default:true" json:"is_visible"`
	IsPromoted bool              `gorm:"not null;default:false" json:"is_promoted"`
	IsReadOnly bool              `gorm:"column:is_readonly;not null;default:false" json:"is_readonly"`
	Views      int64             `gorm:"not null;default:0" json:"views"`
	Upvotes    int64             `gorm:"not null;default:0" json:"upvotes"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedBy  uint              `gorm:"index" json:"created_by"`
	ModifiedBy uint              `json:"modified_by"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
