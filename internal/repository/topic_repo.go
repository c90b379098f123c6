package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JulioFS/zforum/internal/models"
)

// TopicFilter narrows topic list queries within a channel.
type TopicFilter struct {
	ChannelID     uint
	IncludeHidden bool
	Page          int
	PageSize      int
}

// TopicRepository persists topics and their replies.
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) error
	Get(ctx context.Context, id uint) (models.Topic, error)
	List(ctx context.Context, filter TopicFilter) ([]models.Topic, int64, error)
	ListReplies(ctx context.Context, parentID uint, includeHidden bool) ([]models.Topic, error)
	IncrementViews(ctx context.Context, id uint) error
	IncrementUpvotes(ctx context.Context, id uint) error
	SetFlag(ctx context.Context, id uint, column string, value bool, modifiedBy uint) error
}

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository constructs a GORM-backed repository.
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) Get(ctx context.Context, id uint) (models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return models.Topic{}, err
	}
	return topic, nil
}

func (r *topicRepository) List(ctx context.Context, filter TopicFilter) ([]models.Topic, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("channel_id = ? AND is_parent = ?", filter.ChannelID, true)
	if !filter.IncludeHidden {
		query = query.Where("is_visible = ?", true)
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

	var topics []models.Topic
	if err := query.Order("is_promoted DESC, updated_at DESC").Find(&topics).Error; err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

func (r *topicRepository) ListReplies(ctx context.Context, parentID uint, includeHidden bool) ([]models.Topic, error) {
	query := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_parent = ?", parentID, false)
	if !includeHidden {
		query = query.Where("is_visible = ?", true)
	}

	var replies []models.Topic
	if err := query.Order("created_at ASC").Find(&replies).Error; err != nil {
		return nil, err
	}
	return replies, nil
}

// IncrementViews is a best-effort display counter bump.
func (r *topicRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).
		Error
}

func (r *topicRepository) IncrementUpvotes(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", gorm.Expr("upvotes + 1")).
		Error
}

func (r *topicRepository) SetFlag(ctx context.Context, id uint, column string, value bool, modifiedBy uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Topic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{column: value, "modified_by": modifiedBy})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
