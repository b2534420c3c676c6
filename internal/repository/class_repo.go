package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// ClassFilter 班级列表过滤条件
type ClassFilter struct {
	Department string
	Major      string
	Year       int
	Keyword    string
	Offset     int
	Limit      int
}

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id uint) (*model.Class, error)
	GetByName(ctx context.Context, name string) (*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ClassFilter) ([]model.Class, int64, error)
	CountAll(ctx context.Context) (int64, error)
	AcquireSeats(ctx context.Context, classID uint, n int) (bool, error)
	ReleaseSeats(ctx context.Context, classID uint, n int) error
}

// classRepo ClassRepository 的 GORM 实现
type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) GetByName(ctx context.Context, name string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Class{}, id).Error
}

func (r *classRepo) List(ctx context.Context, filter ClassFilter) ([]model.Class, int64, error) {
	var classes []model.Class
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Class{})
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Major != "" {
		db = db.Where("major = ?", filter.Major)
	}
	if filter.Year != 0 {
		db = db.Where("year = ?", filter.Year)
	}
	if filter.Keyword != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Teacher").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("year DESC, name ASC").
		Find(&classes).Error; err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *classRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Class{}).Count(&total).Error
	return total, err
}

// AcquireSeats 以单条条件 UPDATE 占用 n 个名额；容量不足时不改写并返回 false。
// 依赖数据库的行锁保证并发下不会超员。
func (r *classRepo) AcquireSeats(ctx context.Context, classID uint, n int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Class{}).
		Where("id = ? AND assigned_students + ? <= capacity", classID, n).
		Update("assigned_students", gorm.Expr("assigned_students + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSeats 释放 n 个名额，计数下限为 0
func (r *classRepo) ReleaseSeats(ctx context.Context, classID uint, n int) error {
	return r.db.WithContext(ctx).Model(&model.Class{}).
		Where("id = ?", classID).
		Update("assigned_students", gorm.Expr("GREATEST(assigned_students - ?, 0)", n)).Error
}
