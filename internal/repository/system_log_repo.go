package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// SystemLogRepository 系统日志数据访问接口（只增）
type SystemLogRepository interface {
	Create(ctx context.Context, log *model.SystemLog) error
	ListByType(ctx context.Context, logType string, offset, limit int) ([]model.SystemLog, int64, error)
}

// systemLogRepo SystemLogRepository 的 GORM 实现
type systemLogRepo struct {
	db *gorm.DB
}

// NewSystemLogRepo 创建 SystemLogRepository 实例
func NewSystemLogRepo(db *gorm.DB) SystemLogRepository {
	return &systemLogRepo{db: db}
}

func (r *systemLogRepo) Create(ctx context.Context, log *model.SystemLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *systemLogRepo) ListByType(ctx context.Context, logType string, offset, limit int) ([]model.SystemLog, int64, error) {
	var logs []model.SystemLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SystemLog{})
	if logType != "" {
		db = db.Where("type = ?", logType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
