package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// SettingsRepository 系统设置数据访问接口（单例行）
type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	GetOrCreate(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, settings *model.Settings) error
}

// settingsRepo SettingsRepository 的 GORM 实现
type settingsRepo struct {
	db *gorm.DB
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := r.db.WithContext(ctx).
		Order("id ASC").
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// GetOrCreate 首次读取时以默认值建行
func (r *settingsRepo) GetOrCreate(ctx context.Context) (*model.Settings, error) {
	settings, err := r.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	settings = model.DefaultSettings()
	if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingsRepo) Update(ctx context.Context, settings *model.Settings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
