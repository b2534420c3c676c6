package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

var ErrBadDeadlineFormat = errors.New("截止时间格式无效")

// SettingsService 系统设置业务接口
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	// Update 白名单更新，变更字段写入审计日志
	Update(ctx context.Context, callerID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(repo *repository.Repository, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, logger: logger}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		s.logger.Error("读取系统设置失败", zap.Error(err))
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, callerID uint, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	var changed []string
	if req.SiteName != nil && *req.SiteName != settings.SiteName {
		settings.SiteName = *req.SiteName
		changed = append(changed, "site_name")
	}
	if req.SiteDescription != nil && *req.SiteDescription != settings.SiteDescription {
		settings.SiteDescription = *req.SiteDescription
		changed = append(changed, "site_description")
	}
	if req.MaintenanceMode != nil && *req.MaintenanceMode != settings.MaintenanceMode {
		settings.MaintenanceMode = *req.MaintenanceMode
		changed = append(changed, "maintenance_mode")
	}
	if req.AllowRegistration != nil && *req.AllowRegistration != settings.AllowRegistration {
		settings.AllowRegistration = *req.AllowRegistration
		changed = append(changed, "allow_registration")
	}
	if req.RequireEmailVerification != nil && *req.RequireEmailVerification != settings.RequireEmailVerification {
		settings.RequireEmailVerification = *req.RequireEmailVerification
		changed = append(changed, "require_email_verification")
	}
	if req.ScoreVisible != nil && *req.ScoreVisible != settings.ScoreVisible {
		settings.ScoreVisible = *req.ScoreVisible
		changed = append(changed, "score_visible")
	}
	if req.StudentIDPrefix != nil && *req.StudentIDPrefix != settings.StudentIDPrefix {
		settings.StudentIDPrefix = *req.StudentIDPrefix
		changed = append(changed, "student_id_prefix")
	}
	if req.DefaultStudentStatus != nil && *req.DefaultStudentStatus != settings.DefaultStudentStatus {
		settings.DefaultStudentStatus = *req.DefaultStudentStatus
		changed = append(changed, "default_student_status")
	}
	if req.EnrollmentDeadline != nil {
		if *req.EnrollmentDeadline == "" {
			if settings.EnrollmentDeadline != nil {
				settings.EnrollmentDeadline = nil
				changed = append(changed, "enrollment_deadline")
			}
		} else {
			deadline, err := time.Parse(time.RFC3339, *req.EnrollmentDeadline)
			if err != nil {
				return nil, ErrBadDeadlineFormat
			}
			settings.EnrollmentDeadline = &deadline
			changed = append(changed, "enrollment_deadline")
		}
	}
	if req.Majors != nil {
		settings.Majors = req.Majors
		changed = append(changed, "majors")
	}
	if req.Departments != nil {
		settings.Departments = req.Departments
		changed = append(changed, "departments")
	}

	if len(changed) == 0 {
		return toSettingsResponse(settings), nil
	}

	if err := s.repo.Settings.Update(ctx, settings); err != nil {
		s.logger.Error("更新系统设置失败", zap.Error(err))
		return nil, err
	}

	logEntry := &model.SystemLog{
		UserID:  &callerID,
		Type:    model.LogTypeSettings,
		Content: fmt.Sprintf("系统设置变更: %s", strings.Join(changed, ", ")),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入设置变更日志失败", zap.Error(err))
	}

	return toSettingsResponse(settings), nil
}

func toSettingsResponse(settings *model.Settings) *dto.SettingsResponse {
	resp := &dto.SettingsResponse{
		SiteName:                 settings.SiteName,
		SiteDescription:          settings.SiteDescription,
		MaintenanceMode:          settings.MaintenanceMode,
		AllowRegistration:        settings.AllowRegistration,
		RequireEmailVerification: settings.RequireEmailVerification,
		ScoreVisible:             settings.ScoreVisible,
		StudentIDPrefix:          settings.StudentIDPrefix,
		DefaultStudentStatus:     settings.DefaultStudentStatus,
		Majors:                   settings.Majors,
		Departments:              settings.Departments,
		UpdatedAt:                settings.UpdatedAt.Format(time.DateTime),
	}
	if settings.EnrollmentDeadline != nil {
		resp.EnrollmentDeadline = settings.EnrollmentDeadline.Format(time.RFC3339)
	}
	return resp
}
