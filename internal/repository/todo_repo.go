package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// TodoFilter 待办列表过滤条件
type TodoFilter struct {
	Status    string
	StudentID uint
	TeacherID uint
	Offset    int
	Limit     int
}

// TodoRepository 待办数据访问接口
type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	GetByID(ctx context.Context, id uint) (*model.Todo, error)
	Update(ctx context.Context, todo *model.Todo) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter TodoFilter) ([]model.Todo, int64, error)
}

// todoRepo TodoRepository 的 GORM 实现
type todoRepo struct {
	db *gorm.DB
}

// NewTodoRepo 创建 TodoRepository 实例
func NewTodoRepo(db *gorm.DB) TodoRepository {
	return &todoRepo{db: db}
}

func (r *todoRepo) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepo) GetByID(ctx context.Context, id uint) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Where("id = ?", id).
		First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepo) Update(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

func (r *todoRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Todo{}, id).Error
}

func (r *todoRepo) List(ctx context.Context, filter TodoFilter) ([]model.Todo, int64, error) {
	var todos []model.Todo
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Todo{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StudentID != 0 {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.TeacherID != 0 {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Preload("Student.User").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("created_at DESC").
		Find(&todos).Error; err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}
