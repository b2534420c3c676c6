package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// ScoreFilter 成绩列表过滤条件
type ScoreFilter struct {
	Year    int
	Major   string
	Keyword string // 模糊匹配学号 / 姓名
	Offset  int
	Limit   int
}

// ScoreAggregate 总分聚合统计
type ScoreAggregate struct {
	Count   int64
	Average float64
	Max     float64
	Min     float64
}

// ScoreRepository 成绩数据访问接口
type ScoreRepository interface {
	Create(ctx context.Context, score *model.Score) error
	GetByStudentID(ctx context.Context, studentID uint) (*model.Score, error)
	Update(ctx context.Context, score *model.Score) error
	List(ctx context.Context, filter ScoreFilter) ([]model.Score, int64, error)
	ListForRanking(ctx context.Context, year int) ([]model.Score, error)
	UpdateRanks(ctx context.Context, scores []model.Score) error
	Aggregate(ctx context.Context, year int) (*ScoreAggregate, error)
}

// scoreRepo ScoreRepository 的 GORM 实现
type scoreRepo struct {
	db *gorm.DB
}

// NewScoreRepo 创建 ScoreRepository 实例
func NewScoreRepo(db *gorm.DB) ScoreRepository {
	return &scoreRepo{db: db}
}

func (r *scoreRepo) Create(ctx context.Context, score *model.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *scoreRepo) GetByStudentID(ctx context.Context, studentID uint) (*model.Score, error) {
	var score model.Score
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *scoreRepo) Update(ctx context.Context, score *model.Score) error {
	return r.db.WithContext(ctx).Save(score).Error
}

func (r *scoreRepo) List(ctx context.Context, filter ScoreFilter) ([]model.Score, int64, error) {
	var scores []model.Score
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Score{}).
		Joins("JOIN students ON students.id = scores.student_id").
		Joins("JOIN users ON users.id = students.user_id")
	if filter.Year != 0 {
		db = db.Where("scores.year = ?", filter.Year)
	}
	if filter.Major != "" {
		db = db.Where("students.major = ?", filter.Major)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("students.student_no ILIKE ? OR users.name ILIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").
		Preload("Student.User").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("scores.total_score DESC, scores.student_id ASC").
		Find(&scores).Error; err != nil {
		return nil, 0, err
	}

	return scores, total, nil
}

// ListForRanking 按排名序（总分降序，学生 ID 升序）取出指定年份全部成绩
func (r *scoreRepo) ListForRanking(ctx context.Context, year int) ([]model.Score, error) {
	var scores []model.Score
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Where("year = ?", year).
		Order("total_score DESC, student_id ASC").
		Find(&scores).Error
	return scores, err
}

// UpdateRanks 批量回写省排名 / 专业排名
func (r *scoreRepo) UpdateRanks(ctx context.Context, scores []model.Score) error {
	for i := range scores {
		err := r.db.WithContext(ctx).Model(&model.Score{}).
			Where("id = ?", scores[i].ID).
			Updates(map[string]interface{}{
				"province_rank": scores[i].ProvinceRank,
				"major_rank":    scores[i].MajorRank,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *scoreRepo) Aggregate(ctx context.Context, year int) (*ScoreAggregate, error) {
	var agg ScoreAggregate
	err := r.db.WithContext(ctx).Model(&model.Score{}).
		Where("year = ?", year).
		Select("COUNT(*) AS count, COALESCE(AVG(total_score), 0) AS average, COALESCE(MAX(total_score), 0) AS max, COALESCE(MIN(total_score), 0) AS min").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}
