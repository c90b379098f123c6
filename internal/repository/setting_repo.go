package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JulioFS/zforum/internal/models"
)

// SettingRepository persists system-wide tunables.
type SettingRepository interface {
	Seed(ctx context.Context, defaults []models.SystemSetting) error
	Get(ctx context.Context, name string) (models.SystemSetting, error)
	Set(ctx context.Context, name, value string) error
	List(ctx context.Context) ([]models.SystemSetting, error)
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository constructs a GORM-backed repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Seed inserts defaults that do not exist yet; values already present are
// left untouched so operator overrides survive restarts.
func (r *settingRepository) Seed(ctx context.Context, defaults []models.SystemSetting) error {
	if len(defaults) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&defaults).Error
}

func (r *settingRepository) Get(ctx context.Context, name string) (models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&setting).Error; err != nil {
		return models.SystemSetting{}, err
	}
	return setting, nil
}

func (r *settingRepository) Set(ctx context.Context, name, value string) error {
	result := r.db.WithContext(ctx).
		Model(&models.SystemSetting{}).
		Where("name = ?", name).
		Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *settingRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
