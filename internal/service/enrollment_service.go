package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// ── 报到模块业务错误 ──

var (
	ErrStudentNotFound    = errors.New("学生不存在")
	ErrAlreadyReported    = errors.New("已完成报到，请勿重复操作")
	ErrDeadlinePassed     = errors.New("已超过报到截止时间")
	ErrInvalidStatus      = errors.New("非法的报到状态")
	ErrNotClassSupervisor = errors.New("只能操作本班学生")
)

// EnrollmentService 新生报到业务接口
type EnrollmentService interface {
	// Report 学生自助报到
	Report(ctx context.Context, userID uint) (*dto.StudentProfileResponse, error)
	// OverrideStatus 管理端改写报到状态；教师只能操作所带班级的学生
	OverrideStatus(ctx context.Context, callerID uint, callerRole string, studentID uint, status string) error
	// ListStudents 学生列表（管理端）
	ListStudents(ctx context.Context, req *dto.ListStudentsRequest) ([]dto.StudentProfileResponse, int64, error)
	// Sweep 截止清扫：把当年仍未报到的 pending 学生置为 unreported
	Sweep(ctx context.Context) (*dto.SweepResultResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Report ──────────────────────

func (s *enrollmentService) Report(ctx context.Context, userID uint) (*dto.StudentProfileResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	if student.Status == model.StudentStatusReported {
		return nil, ErrAlreadyReported
	}

	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if settings.EnrollmentDeadline != nil && now.After(*settings.EnrollmentDeadline) {
		return nil, ErrDeadlinePassed
	}

	student.Status = model.StudentStatusReported
	student.ReportTime = &now
	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新报到状态失败", zap.Error(err))
		return nil, err
	}

	// 报到日志失败不影响报到结果
	logEntry := &model.SystemLog{
		UserID:  &userID,
		Type:    model.LogTypeEnrollment,
		Content: fmt.Sprintf("学生 %s 完成报到", student.StudentNo),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入报到日志失败", zap.Error(err))
	}

	s.logger.Info("学生报到成功",
		zap.Uint("student_id", student.ID),
		zap.String("student_no", student.StudentNo),
	)
	return s.toProfile(student), nil
}

// ────────────────────── OverrideStatus ──────────────────────

func (s *enrollmentService) OverrideStatus(ctx context.Context, callerID uint, callerRole string, studentID uint, status string) error {
	if !model.ValidOverrideStatus(status) {
		return ErrInvalidStatus
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	// 教师只能改写本班学生
	if callerRole == model.RoleTeacher {
		if student.User == nil || student.User.ClassID == nil {
			return ErrNotClassSupervisor
		}
		class, err := s.repo.Class.GetByID(ctx, *student.User.ClassID)
		if err != nil {
			return err
		}
		if class.TeacherID == nil || *class.TeacherID != callerID {
			return ErrNotClassSupervisor
		}
	}

	student.Status = status
	if status == model.StudentStatusReported {
		if student.ReportTime == nil {
			now := s.now()
			student.ReportTime = &now
		}
	} else {
		student.ReportTime = nil
	}

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("改写报到状态失败", zap.Error(err))
		return err
	}

	logEntry := &model.SystemLog{
		UserID:  &callerID,
		Type:    model.LogTypeEnrollment,
		Content: fmt.Sprintf("学生 %s 报到状态被改写为 %s", student.StudentNo, status),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入状态改写日志失败", zap.Error(err))
	}
	return nil
}

// ────────────────────── ListStudents ──────────────────────

func (s *enrollmentService) ListStudents(ctx context.Context, req *dto.ListStudentsRequest) ([]dto.StudentProfileResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, repository.StudentFilter{
		Status:        req.Status,
		Major:         req.Major,
		AdmissionYear: req.AdmissionYear,
		ClassID:       req.ClassID,
		Keyword:       req.Keyword,
		Offset:        req.GetOffset(),
		Limit:         req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentProfileResponse, 0, len(students))
	for i := range students {
		result = append(result, *s.toProfile(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── Sweep ──────────────────────

// Sweep 幂等：条件更新只命中 pending 行，重复执行不会改写已处理的学生
func (s *enrollmentService) Sweep(ctx context.Context) (*dto.SweepResultResponse, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		s.logger.Error("读取系统设置失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := &dto.SweepResultResponse{
		Year:  now.Year(),
		RanAt: now.Format(time.DateTime),
	}
	if settings.EnrollmentDeadline == nil || now.Before(*settings.EnrollmentDeadline) {
		return result, nil
	}

	affected, err := s.repo.Student.MarkUnreported(ctx, now.Year())
	if err != nil {
		s.logger.Error("批量标记未报到失败", zap.Error(err))
		return nil, err
	}
	result.Expired = int(affected)

	if affected > 0 {
		logEntry := &model.SystemLog{
			Type: model.LogTypeSystemAuto,
			Content: fmt.Sprintf("报到截止自动处理：%d 名 %d 级学生被标记为未报到",
				affected, now.Year()),
		}
		if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
			s.logger.Warn("写入系统日志失败", zap.Error(err))
		}
		s.logger.Info("报到截止清扫完成",
			zap.Int64("expired", affected),
			zap.Int("year", now.Year()),
		)
	}
	return result, nil
}

// ── 内部工具 ──

func (s *enrollmentService) toProfile(student *model.Student) *dto.StudentProfileResponse {
	resp := &dto.StudentProfileResponse{
		StudentID:     student.ID,
		StudentNo:     student.StudentNo,
		Major:         student.Major,
		AdmissionYear: student.AdmissionYear,
		Status:        student.Status,
	}
	if student.User != nil {
		resp.UserResponse = toUserResponse(student.User)
	}
	if student.AdmissionDate != nil {
		resp.AdmissionDate = student.AdmissionDate.Format(time.DateOnly)
	}
	if student.GraduationDate != nil {
		resp.GraduationDate = student.GraduationDate.Format(time.DateOnly)
	}
	if student.ReportTime != nil {
		resp.ReportTime = student.ReportTime.Format(time.DateTime)
	}
	return resp
}
