package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// StudentFilter 学生列表过滤条件
type StudentFilter struct {
	Status        string
	Major         string
	AdmissionYear int
	ClassID       uint
	Keyword       string // 模糊匹配学号 / 姓名
	Offset        int
	Limit         int
}

// DateCount 按日计数（报到趋势）
type DateCount struct {
	Date  time.Time
	Count int64
}

// NameCount 按名称计数（省份 / 专业分布）
type NameCount struct {
	Name  string
	Count int64
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByUserID(ctx context.Context, userID uint) (*model.Student, error)
	GetByStudentNo(ctx context.Context, studentNo string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	List(ctx context.Context, filter StudentFilter) ([]model.Student, int64, error)
	ListByClassID(ctx context.Context, classID uint) ([]model.Student, error)
	MaxStudentNo(ctx context.Context, prefix string) (string, error)
	MarkUnreported(ctx context.Context, admissionYear int) (int64, error)

	// 统计
	CountAll(ctx context.Context) (int64, error)
	StatusCounts(ctx context.Context, admissionYear int) (map[string]int64, error)
	GenderCounts(ctx context.Context) (map[string]int64, error)
	ProvinceTop(ctx context.Context, limit int) ([]NameCount, error)
	MajorCounts(ctx context.Context) ([]NameCount, error)
	ReportTrend(ctx context.Context, admissionYear int) ([]DateCount, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByStudentNo(ctx context.Context, studentNo string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("student_no = ?", studentNo).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.id = students.user_id")
	if filter.Status != "" {
		db = db.Where("students.status = ?", filter.Status)
	}
	if filter.Major != "" {
		db = db.Where("students.major = ?", filter.Major)
	}
	if filter.AdmissionYear != 0 {
		db = db.Where("students.admission_year = ?", filter.AdmissionYear)
	}
	if filter.ClassID != 0 {
		db = db.Where("users.class_id = ?", filter.ClassID)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("students.student_no ILIKE ? OR users.name ILIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("students.student_no ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

func (r *studentRepo) ListByClassID(ctx context.Context, classID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.class_id = ?", classID).
		Preload("User").
		Order("students.student_no ASC").
		Find(&students).Error
	return students, err
}

// MaxStudentNo 返回指定前缀下最大的学号；无记录时返回空串
func (r *studentRepo) MaxStudentNo(ctx context.Context, prefix string) (string, error) {
	var max *string
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("student_no LIKE ?", prefix+"%").
		Select("MAX(student_no)").
		Scan(&max).Error
	if err != nil {
		return "", err
	}
	if max == nil {
		return "", nil
	}
	return *max, nil
}

// MarkUnreported 把指定年份仍为 pending 的学生批量置为 unreported，返回影响行数
func (r *studentRepo) MarkUnreported(ctx context.Context, admissionYear int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("status = ? AND admission_year = ?", model.StudentStatusPending, admissionYear).
		Update("status", model.StudentStatusUnreported)
	return res.RowsAffected, res.Error
}

// ── 统计 ──

func (r *studentRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Student{}).Count(&total).Error
	return total, err
}

func (r *studentRepo) StatusCounts(ctx context.Context, admissionYear int) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	db := r.db.WithContext(ctx).Model(&model.Student{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if admissionYear != 0 {
		db = db.Where("admission_year = ?", admissionYear)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *studentRepo) GenderCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Gender string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.gender <> ''").
		Select("users.gender AS gender, COUNT(*) AS count").
		Group("users.gender").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Gender] = row.Count
	}
	return counts, nil
}

func (r *studentRepo) ProvinceTop(ctx context.Context, limit int) ([]NameCount, error) {
	var rows []NameCount
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.id = students.user_id").
		Where("users.province <> ''").
		Select("users.province AS name, COUNT(*) AS count").
		Group("users.province").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *studentRepo) MajorCounts(ctx context.Context) ([]NameCount, error) {
	var rows []NameCount
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("major <> ''").
		Select("major AS name, COUNT(*) AS count").
		Group("major").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ReportTrend 按日统计指定年份的报到人数
func (r *studentRepo) ReportTrend(ctx context.Context, admissionYear int) ([]DateCount, error) {
	var rows []DateCount
	err := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("status = ? AND admission_year = ? AND report_time IS NOT NULL",
			model.StudentStatusReported, admissionYear).
		Select("DATE_TRUNC('day', report_time) AS date, COUNT(*) AS count").
		Group("DATE_TRUNC('day', report_time)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}
