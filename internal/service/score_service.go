package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// ── 成绩模块业务错误 ──

var (
	ErrScoreNotFound    = errors.New("成绩不存在")
	ErrScoreNotVisible  = errors.New("成绩暂未开放查询")
	ErrEmptyExcel       = errors.New("Excel 文件没有数据行")
	ErrBadExcelTemplate = errors.New("Excel 表头与模板不符")
)

// 成绩表模板列序：学号 姓名 年份 总分 语文 数学 英语 物理 化学 生物
var scoreHeader = []string{"学号", "姓名", "年份", "总分", "语文", "数学", "英语", "物理", "化学", "生物"}

// ScoreService 成绩业务接口
type ScoreService interface {
	// ImportExcel 批量导入成绩：逐行校验，失败行跳过并记录原因，成功行一次事务落库
	ImportExcel(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error)
	// RecomputeRanks 重算指定年份的省排名和专业排名
	RecomputeRanks(ctx context.Context, year int) error
	List(ctx context.Context, req *dto.ListScoresRequest) ([]dto.ScoreResponse, int64, error)
	// GetMyScore 学生查询本人成绩，受系统设置 score_visible 开关控制
	GetMyScore(ctx context.Context, userID uint) (*dto.ScoreResponse, error)
	Stats(ctx context.Context, year int) (*dto.ScoreStatsResponse, error)
}

type scoreService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScoreService 创建 ScoreService 实例
func NewScoreService(repo *repository.Repository, logger *zap.Logger) ScoreService {
	return &scoreService{repo: repo, logger: logger}
}

// ────────────────────── ImportExcel ──────────────────────

type scoreRow struct {
	rowNum  int
	student *model.Student
	score   *model.Score
}

func (s *scoreService) ImportExcel(ctx context.Context, r io.Reader) (*dto.ImportResultResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("读取 Excel 失败: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptyExcel
	}
	if err := checkHeader(rows[0], scoreHeader); err != nil {
		return nil, err
	}

	result := &dto.ImportResultResponse{Total: len(rows) - 1}
	valid := make([]scoreRow, 0, len(rows)-1)
	years := make(map[int]struct{})

	// 第一阶段：逐行解析校验
	for i, row := range rows[1:] {
		rowNum := i + 2
		parsed, reason := s.parseScoreRow(ctx, row)
		if reason != "" {
			result.Failed = append(result.Failed, dto.ImportRowError{Row: rowNum, Reason: reason})
			continue
		}

		// 已有成绩的学生跳过，不覆盖
		if _, err := s.repo.Score.GetByStudentID(ctx, parsed.student.ID); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		parsed.rowNum = rowNum
		valid = append(valid, *parsed)
		years[parsed.score.Year] = struct{}{}
	}

	// 第二阶段：一次事务写入
	if len(valid) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			return nil, err
		}
		txRepo := s.repo.WithTx(tx)

		for i := range valid {
			if err := txRepo.Score.Create(ctx, valid[i].score); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("写入成绩失败", zap.Int("row", valid[i].rowNum), zap.Error(err))
				return nil, err
			}
		}
		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				return nil, err
			}
		}
		result.Imported = len(valid)

		// 导入后按年份重算排名
		for year := range years {
			if err := s.RecomputeRanks(ctx, year); err != nil {
				s.logger.Error("重算排名失败", zap.Int("year", year), zap.Error(err))
				return nil, err
			}
		}
	}

	s.logger.Info("成绩导入完成",
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// parseScoreRow 解析一行成绩；reason 非空表示该行无效
func (s *scoreService) parseScoreRow(ctx context.Context, row []string) (*scoreRow, string) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	studentNo := get(0)
	if studentNo == "" {
		return nil, "学号不能为空"
	}
	student, err := s.repo.Student.GetByStudentNo(ctx, studentNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Sprintf("学号 %s 不存在", studentNo)
		}
		return nil, "查询学生失败"
	}

	year, err := strconv.Atoi(get(2))
	if err != nil || year < 2000 || year > 2100 {
		return nil, "年份无效"
	}

	score := &model.Score{StudentID: student.ID, Year: year}

	subjects := []struct {
		col   int
		max   float64
		name  string
		field **float64
	}{
		{4, model.MaxMainSubjectScore, "语文", &score.Chinese},
		{5, model.MaxMainSubjectScore, "数学", &score.Math},
		{6, model.MaxMainSubjectScore, "英语", &score.English},
		{7, model.MaxSubSubjectScore, "物理", &score.Physics},
		{8, model.MaxSubSubjectScore, "化学", &score.Chemistry},
		{9, model.MaxSubSubjectScore, "生物", &score.Biology},
	}
	hasSubject := false
	for _, sub := range subjects {
		cell := get(sub.col)
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Sprintf("%s成绩格式错误", sub.name)
		}
		if v < 0 || v > sub.max {
			return nil, fmt.Sprintf("%s成绩超出范围 0-%.0f", sub.name, sub.max)
		}
		val := v
		*sub.field = &val
		hasSubject = true
	}

	if hasSubject {
		// 有单科成绩时总分以求和为准
		score.ComputeTotal()
	} else {
		total, err := strconv.ParseFloat(get(3), 64)
		if err != nil {
			return nil, "总分不能为空"
		}
		if total < 0 || total > 750 {
			return nil, "总分超出范围 0-750"
		}
		score.TotalScore = total
	}

	return &scoreRow{student: student, score: score}, ""
}

// ────────────────────── RecomputeRanks ──────────────────────

// RecomputeRanks 排名规则：总分降序，同分按学生 ID 升序；
// 省排名为全体考生的统一序列，专业排名按学生专业分组。
func (s *scoreService) RecomputeRanks(ctx context.Context, year int) error {
	scores, err := s.repo.Score.ListForRanking(ctx, year)
	if err != nil {
		return err
	}

	majorSeq := make(map[string]int)

	for i := range scores {
		var major string
		if scores[i].Student != nil {
			major = scores[i].Student.Major
		}

		pr := i + 1
		scores[i].ProvinceRank = &pr

		majorSeq[major]++
		mr := majorSeq[major]
		scores[i].MajorRank = &mr
	}

	return s.repo.Score.UpdateRanks(ctx, scores)
}

// ────────────────────── List / GetMyScore ──────────────────────

func (s *scoreService) List(ctx context.Context, req *dto.ListScoresRequest) ([]dto.ScoreResponse, int64, error) {
	scores, total, err := s.repo.Score.List(ctx, repository.ScoreFilter{
		Year:    req.Year,
		Major:   req.Major,
		Keyword: req.Keyword,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询成绩列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScoreResponse, 0, len(scores))
	for i := range scores {
		result = append(result, toScoreResponse(&scores[i]))
	}
	return result, total, nil
}

func (s *scoreService) GetMyScore(ctx context.Context, userID uint) (*dto.ScoreResponse, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.ScoreVisible {
		return nil, ErrScoreNotVisible
	}

	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	score, err := s.repo.Score.GetByStudentID(ctx, student.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}

	score.Student = student
	resp := toScoreResponse(score)
	return &resp, nil
}

// ────────────────────── Stats ──────────────────────

func (s *scoreService) Stats(ctx context.Context, year int) (*dto.ScoreStatsResponse, error) {
	agg, err := s.repo.Score.Aggregate(ctx, year)
	if err != nil {
		s.logger.Error("成绩聚合失败", zap.Error(err))
		return nil, err
	}

	// 按 100 分一段统计分布
	scores, err := s.repo.Score.ListForRanking(ctx, year)
	if err != nil {
		return nil, err
	}
	segCounts := make(map[string]int64)
	for i := range scores {
		lo := int(scores[i].TotalScore) / 100 * 100
		key := fmt.Sprintf("%d-%d", lo, lo+99)
		segCounts[key]++
	}
	segments := make([]dto.NameCount, 0, len(segCounts))
	for lo := 0; lo <= 700; lo += 100 {
		key := fmt.Sprintf("%d-%d", lo, lo+99)
		if n, ok := segCounts[key]; ok {
			segments = append(segments, dto.NameCount{Name: key, Count: n})
		}
	}

	return &dto.ScoreStatsResponse{
		Year:         year,
		Count:        agg.Count,
		AverageTotal: agg.Average,
		MaxTotal:     agg.Max,
		MinTotal:     agg.Min,
		Segments:     segments,
	}, nil
}

// ── 内部工具 ──

func toScoreResponse(score *model.Score) dto.ScoreResponse {
	resp := dto.ScoreResponse{
		ID:           score.ID,
		StudentID:    score.StudentID,
		Year:         score.Year,
		Chinese:      score.Chinese,
		Math:         score.Math,
		English:      score.English,
		Physics:      score.Physics,
		Chemistry:    score.Chemistry,
		Biology:      score.Biology,
		TotalScore:   score.TotalScore,
		ProvinceRank: score.ProvinceRank,
		MajorRank:    score.MajorRank,
	}
	if score.Student != nil {
		resp.StudentNo = score.Student.StudentNo
		if score.Student.User != nil {
			resp.StudentName = score.Student.User.Name
		}
	}
	return resp
}

// checkHeader 校验表头列名（忽略必填标记 *）
func checkHeader(row []string, expected []string) error {
	if len(row) < len(expected) {
		return ErrBadExcelTemplate
	}
	for i, want := range expected {
		got := strings.TrimSuffix(strings.TrimSpace(row[i]), "*")
		if got != want {
			return ErrBadExcelTemplate
		}
	}
	return nil
}
