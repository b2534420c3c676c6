package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// StatsService 统计看板业务接口
type StatsService interface {
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
	// EnrollmentTrend 指定年份的按日报到趋势；year 为 0 时取当前年
	EnrollmentTrend(ctx context.Context, year int) (*dto.EnrollmentTrendResponse, error)
	LastLogins(ctx context.Context, limit int) ([]dto.LastLoginResponse, error)
	// ListLogs 审计日志列表；logType 为空时不过滤类型
	ListLogs(ctx context.Context, req *dto.ListLogsRequest) ([]dto.SystemLogResponse, int64, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	total, err := s.repo.Student.CountAll(ctx)
	if err != nil {
		s.logger.Error("统计学生总数失败", zap.Error(err))
		return nil, err
	}
	statusCounts, err := s.repo.Student.StatusCounts(ctx, 0)
	if err != nil {
		return nil, err
	}
	genderCounts, err := s.repo.Student.GenderCounts(ctx)
	if err != nil {
		return nil, err
	}
	provinces, err := s.repo.Student.ProvinceTop(ctx, 10)
	if err != nil {
		return nil, err
	}
	majors, err := s.repo.Student.MajorCounts(ctx)
	if err != nil {
		return nil, err
	}
	classCount, err := s.repo.Class.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	teacherCount, err := s.repo.User.CountByRole(ctx, model.RoleTeacher)
	if err != nil {
		return nil, err
	}

	reported := statusCounts[model.StudentStatusReported]
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(reported)/float64(total)*10000) / 100
	}

	return &dto.OverviewResponse{
		TotalStudents:     total,
		ReportedCount:     reported,
		PendingCount:      statusCounts[model.StudentStatusPending],
		UnreportedCount:   statusCounts[model.StudentStatusUnreported],
		ReportRate:        rate,
		TotalClasses:      classCount,
		TotalTeachers:     teacherCount,
		GenderRatio:       genderCounts,
		ProvinceTop:       toNameCounts(provinces),
		MajorDistribution: toNameCounts(majors),
	}, nil
}

func (s *statsService) EnrollmentTrend(ctx context.Context, year int) (*dto.EnrollmentTrendResponse, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	trend, err := s.repo.Student.ReportTrend(ctx, year)
	if err != nil {
		s.logger.Error("统计报到趋势失败", zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	points := make([]dto.DateCount, 0, len(trend))
	for _, p := range trend {
		points = append(points, dto.DateCount{
			Date:  p.Date.Format(time.DateOnly),
			Count: p.Count,
		})
	}
	return &dto.EnrollmentTrendResponse{Year: year, Points: points}, nil
}

func (s *statsService) LastLogins(ctx context.Context, limit int) ([]dto.LastLoginResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	logs, _, err := s.repo.SystemLog.ListByType(ctx, model.LogTypeLogin, 0, limit)
	if err != nil {
		s.logger.Error("查询登录日志失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.LastLoginResponse, 0, len(logs))
	for i := range logs {
		entry := dto.LastLoginResponse{
			IPAddress: logs[i].IPAddress,
			LoginAt:   logs[i].CreatedAt.Format(time.DateTime),
		}
		if logs[i].UserID != nil {
			entry.UserID = *logs[i].UserID
			if user, err := s.repo.User.GetByID(ctx, *logs[i].UserID); err == nil {
				entry.Username = user.Username
				entry.Role = user.Role
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *statsService) ListLogs(ctx context.Context, req *dto.ListLogsRequest) ([]dto.SystemLogResponse, int64, error) {
	logs, total, err := s.repo.SystemLog.ListByType(ctx, req.Type, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询系统日志失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SystemLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, dto.SystemLogResponse{
			ID:        logs[i].ID,
			UserID:    logs[i].UserID,
			Type:      logs[i].Type,
			Content:   logs[i].Content,
			IPAddress: logs[i].IPAddress,
			CreatedAt: logs[i].CreatedAt.Format(time.DateTime),
		})
	}
	return result, total, nil
}

func toNameCounts(rows []repository.NameCount) []dto.NameCount {
	result := make([]dto.NameCount, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.NameCount{Name: r.Name, Count: r.Count})
	}
	return result
}
