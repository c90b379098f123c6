package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JulioFS/zforum/internal/models"
)

// MembershipRepository persists the per (user, channel) membership ledger.
// Rows are only ever upserted, never deleted, so history stays queryable.
type MembershipRepository interface {
	Upsert(ctx context.Context, membership *models.ChannelMembership) error
	Get(ctx context.Context, channelID, userID uint) (models.ChannelMembership, error)
	ListPending(ctx context.Context, channelID uint) ([]models.ChannelMembership, error)
	HasActive(ctx context.Context, channelID, userID uint, now time.Time) (bool, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository constructs a GORM-backed repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Upsert inserts or updates the ledger row keyed on (user_id, channel_id).
// The ON CONFLICT clause keeps the operation atomic under concurrent
// requests for the same pair, so duplicates cannot appear.
func (r *membershipRepository) Upsert(ctx context.Context, membership *models.ChannelMembership) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_new_request", "expires_on", "modified_by", "updated_at",
		}),
	}).Create(membership).Error
}

func (r *membershipRepository) Get(ctx context.Context, channelID, userID uint) (models.ChannelMembership, error) {
	var membership models.ChannelMembership
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&membership).Error; err != nil {
		return models.ChannelMembership{}, err
	}
	return membership, nil
}

func (r *membershipRepository) ListPending(ctx context.Context, channelID uint) ([]models.ChannelMembership, error) {
	var pending []models.ChannelMembership
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND is_new_request = ?", channelID, true).
		Order("updated_at ASC").
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *membershipRepository) HasActive(ctx context.Context, channelID, userID uint, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChannelMembership{}).
		Where("channel_id = ? AND user_id = ? AND is_new_request = ? AND expires_on >= ?",
			channelID, userID, false, now).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
