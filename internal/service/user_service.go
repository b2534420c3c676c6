package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// 管理员重置密码的默认口令
const defaultPassword = "123456"

var (
	ErrProfileNotFound = errors.New("档案不存在")
	ErrCannotDisable   = errors.New("不能停用自己的账号")
)

// UserService 用户业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (interface{}, error)
	UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateStudentProfileRequest) error
	UpdateTeacherProfile(ctx context.Context, userID uint, req *dto.UpdateTeacherProfileRequest) error
	ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest) error

	// 管理端
	List(ctx context.Context, req *dto.ListUsersRequest) ([]dto.UserResponse, int64, error)
	ListTeachers(ctx context.Context, req *dto.PaginationRequest) ([]dto.TeacherProfileResponse, int64, error)
	AdminUpdate(ctx context.Context, callerID, userID uint, req *dto.AdminUpdateUserRequest) error
	ResetPassword(ctx context.Context, userID uint, newPassword string) error
	Delete(ctx context.Context, callerID, userID uint) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── GetProfile ──────────────────────

// GetProfile 按角色返回学生 / 教师 / 管理员视图
func (s *userService) GetProfile(ctx context.Context, userID uint) (interface{}, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	base := toUserResponse(user)

	switch user.Role {
	case model.RoleStudent:
		student, err := s.repo.Student.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		resp := dto.StudentProfileResponse{
			UserResponse:  base,
			StudentID:     student.ID,
			StudentNo:     student.StudentNo,
			Major:         student.Major,
			AdmissionYear: student.AdmissionYear,
			Status:        student.Status,
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
		if user.Class != nil {
			resp.ClassName = user.Class.Name
		}
		return &resp, nil

	case model.RoleTeacher:
		teacher, err := s.repo.Teacher.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		return &dto.TeacherProfileResponse{
			UserResponse: base,
			TeacherID:    teacher.ID,
			Department:   teacher.Department,
			Title:        teacher.Title,
			ResearchArea: teacher.ResearchArea,
		}, nil
	}

	return &base, nil
}

// ────────────────────── UpdateProfile ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateStudentProfileRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	applyProfileFields(user, &req.UpdateProfileRequest)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return err
	}

	if user.Role == model.RoleStudent && req.Major != nil {
		student, err := s.repo.Student.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		student.Major = *req.Major
		if err := s.repo.Student.Update(ctx, student); err != nil {
			s.logger.Error("更新学生档案失败", zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *userService) UpdateTeacherProfile(ctx context.Context, userID uint, req *dto.UpdateTeacherProfileRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	applyProfileFields(user, &req.UpdateProfileRequest)
	if err := s.repo.User.Update(ctx, user); err != nil {
		return err
	}

	teacher, err := s.repo.Teacher.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	if req.Department != nil {
		teacher.Department = *req.Department
	}
	if req.Title != nil {
		teacher.Title = *req.Title
	}
	if req.ResearchArea != nil {
		teacher.ResearchArea = *req.ResearchArea
	}
	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		s.logger.Error("更新教师档案失败", zap.Error(err))
		return err
	}
	return nil
}

func applyProfileFields(user *model.User, req *dto.UpdateProfileRequest) {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Contact != nil {
		user.Contact = *req.Contact
	}
	if req.Province != nil {
		user.Province = *req.Province
	}
}

// ────────────────────── ChangePassword ──────────────────────

func (s *userService) ChangePassword(ctx context.Context, userID uint, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("修改密码失败", zap.Error(err))
		return err
	}

	logEntry := &model.SystemLog{
		UserID:  &user.ID,
		Type:    model.LogTypeSecurity,
		Content: fmt.Sprintf("用户 %s 修改密码", user.Username),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入安全日志失败", zap.Error(err))
	}
	return nil
}

// ────────────────────── 管理端 ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.ListUsersRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{
		Role:    req.Role,
		Keyword: req.Keyword,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) ListTeachers(ctx context.Context, req *dto.PaginationRequest) ([]dto.TeacherProfileResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherProfileResponse, 0, len(teachers))
	for i := range teachers {
		t := &teachers[i]
		resp := dto.TeacherProfileResponse{
			TeacherID:    t.ID,
			Department:   t.Department,
			Title:        t.Title,
			ResearchArea: t.ResearchArea,
		}
		if t.User != nil {
			resp.UserResponse = toUserResponse(t.User)
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *userService) AdminUpdate(ctx context.Context, callerID, userID uint, req *dto.AdminUpdateUserRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if req.IsActive != nil {
		if callerID == userID && !*req.IsActive {
			return ErrCannotDisable
		}
		user.IsActive = *req.IsActive
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Contact != nil {
		user.Contact = *req.Contact
	}
	if req.Province != nil {
		user.Province = *req.Province
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return err
	}
	return nil
}

// ResetPassword 重置指定用户的密码；newPassword 为空时使用默认口令
func (s *userService) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if newPassword == "" {
		newPassword = defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, callerID, userID uint) error {
	if callerID == userID {
		return ErrCannotDisable
	}
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// 学生占用的班级名额随删除释放
	if user.Role == model.RoleStudent && user.ClassID != nil {
		if err := s.repo.Class.ReleaseSeats(ctx, *user.ClassID, 1); err != nil {
			s.logger.Warn("释放班级名额失败", zap.Uint("class_id", *user.ClassID), zap.Error(err))
		}
	}

	if err := s.repo.User.Delete(ctx, userID); err != nil {
		s.logger.Error("删除用户失败", zap.Error(err))
		return err
	}

	logEntry := &model.SystemLog{
		UserID:  &callerID,
		Type:    model.LogTypeSecurity,
		Content: fmt.Sprintf("管理员删除用户 %s", user.Username),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入删除日志失败", zap.Error(err))
	}
	return nil
}
