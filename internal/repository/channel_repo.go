package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/models"
)

// ChannelFilter narrows channel list queries.
type ChannelFilter struct {
	IncludePrivate bool
	Page           int
	PageSize       int
}

// ChannelCounts carries the per-channel aggregates the rank formula needs.
type ChannelCounts struct {
	ChannelID  uint
	Views      int64
	TopicCount int64
	ReplyCount int64
}

// ChannelRepository persists channels and their admin delegations.
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	Update(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id uint) (models.Channel, error)
	GetByTag(ctx context.Context, tag string) (models.Channel, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	List(ctx context.Context, filter ChannelFilter) ([]models.Channel, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	SetRank(ctx context.Context, id uint, rank float64) error
	Counts(ctx context.Context) ([]ChannelCounts, error)

	CreateWithAdmin(ctx context.Context, channel *models.Channel, userID uint) error
	SetAdmin(ctx context.Context, channelID, userID uint, active bool) error
	IsActiveAdmin(ctx context.Context, channelID, userID uint) (bool, error)
	ListAdmins(ctx context.Context, channelID uint) ([]models.ChannelAdmin, error)
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository constructs a GORM-backed repository.
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *channelRepository) Update(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

func (r *channelRepository) GetByID(ctx context.Context, id uint) (models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).First(&channel, id).Error; err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (r *channelRepository) GetByTag(ctx context.Context, tag string) (models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).
		Where("lower(tag) = ?", strings.ToLower(strings.TrimSpace(tag))).
		First(&channel).Error; err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (r *channelRepository) TagExists(ctx context.Context, tag string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("lower(tag) = ?", strings.ToLower(strings.TrimSpace(tag))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *channelRepository) List(ctx context.Context, filter ChannelFilter) ([]models.Channel, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Channel{})
	if !filter.IncludePrivate {
		query = query.Where("is_private = ?", false)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var channels []models.Channel
	if err := query.Order("views DESC, updated_at DESC").Find(&channels).Error; err != nil {
		return nil, 0, err
	}

	return channels, total, nil
}

// IncrementViews is a fire-and-forget display counter bump; lost updates
// under concurrent requests are tolerated.
func (r *channelRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).
		Error
}

func (r *channelRepository) SetRank(ctx context.Context, id uint, rank float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		UpdateColumn("rank", rank).
		Error
}

func (r *channelRepository) Counts(ctx context.Context) ([]ChannelCounts, error) {
	var counts []ChannelCounts
	err := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Select(`channels.id AS channel_id,
			channels.views AS views,
			count(CASE WHEN topics.is_parent THEN 1 END) AS topic_count,
			count(CASE WHEN NOT topics.is_parent THEN 1 END) AS reply_count`).
		Joins("LEFT JOIN topics ON topics.channel_id = channels.id").
		Group("channels.id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// CreateWithAdmin inserts the channel and grants the creator an active
// ChannelAdmin row in a single transaction so a failed grant never leaves
// an orphan channel.
func (r *channelRepository) CreateWithAdmin(ctx context.Context, channel *models.Channel, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return err
		}

		admin := models.ChannelAdmin{
			UserID:    userID,
			ChannelID: channel.ID,
			IsActive:  true,
		}
		return tx.Create(&admin).Error
	})
}

func (r *channelRepository) SetAdmin(ctx context.Context, channelID, userID uint, active bool) error {
	var existing models.ChannelAdmin
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			if !active {
				return nil
			}
			admin := models.ChannelAdmin{UserID: userID, ChannelID: channelID, IsActive: true}
			return r.db.WithContext(ctx).Create(&admin).Error
		}
		return err
	}

	return r.db.WithContext(ctx).
		Model(&existing).
		Update("is_active", active).
		Error
}

func (r *channelRepository) IsActiveAdmin(ctx context.Context, channelID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChannelAdmin{}).
		Where("channel_id = ? AND user_id = ? AND is_active = ?", channelID, userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *channelRepository) ListAdmins(ctx context.Context, channelID uint) ([]models.ChannelAdmin, error) {
	var admins []models.ChannelAdmin
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND is_active = ?", channelID, true).
		Order("created_at ASC").
		Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
