package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
)

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound          = errors.New("班级不存在")
	ErrClassNameExists        = errors.New("班级名称已存在")
	ErrClassNotEmpty          = errors.New("班级尚有学生，无法删除")
	ErrClassCapacityExceeded  = errors.New("班级容量不足")
	ErrCapacityBelowAssigned  = errors.New("容量不能小于已分配人数")
	ErrStudentAlreadyAssigned = errors.New("学生已有班级")
	ErrStudentNotInClass      = errors.New("学生不在该班级")
	ErrNotAStudent            = errors.New("目标用户不是学生")
)

// ClassService 班级业务接口
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ClassResponse, error)
	List(ctx context.Context, req *dto.ListClassesRequest) ([]dto.ClassResponse, int64, error)
	Update(ctx context.Context, id uint, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
	// AssignStudents 批量分配：任一学生失败则整批不生效
	AssignStudents(ctx context.Context, classID uint, studentIDs []uint) error
	RemoveStudent(ctx context.Context, classID, studentID uint) error
	// RemoveStudents 批量移出：不在该班的学生跳过，返回实际移出人数
	RemoveStudents(ctx context.Context, classID uint, studentIDs []uint) (int, error)
	// TransferStudent 转班：源班释放名额，目标班按容量占用
	TransferStudent(ctx context.Context, studentID, targetClassID uint) error
	ListStudents(ctx context.Context, classID uint) ([]dto.StudentProfileResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	existing, err := s.repo.Class.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrClassNameExists
	}

	class := &model.Class{
		Name:       req.Name,
		Department: req.Department,
		Major:      req.Major,
		Year:       req.Year,
		Capacity:   req.Capacity,
		TeacherID:  req.TeacherID,
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return s.toResponse(class), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *classService) GetByID(ctx context.Context, id uint) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return s.toResponse(class), nil
}

func (s *classService) List(ctx context.Context, req *dto.ListClassesRequest) ([]dto.ClassResponse, int64, error) {
	classes, total, err := s.repo.Class.List(ctx, repository.ClassFilter{
		Department: req.Department,
		Major:      req.Major,
		Year:       req.Year,
		Keyword:    req.Keyword,
		Offset:     req.GetOffset(),
		Limit:      req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, *s.toResponse(&classes[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, id uint, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != class.Name {
		existing, err := s.repo.Class.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrClassNameExists
		}
		class.Name = *req.Name
	}
	if req.Capacity != nil {
		if *req.Capacity < class.AssignedStudents {
			return nil, ErrCapacityBelowAssigned
		}
		class.Capacity = *req.Capacity
	}
	if req.Department != nil {
		class.Department = *req.Department
	}
	if req.Major != nil {
		class.Major = *req.Major
	}
	if req.Year != nil {
		class.Year = *req.Year
	}
	if req.TeacherID != nil {
		class.TeacherID = req.TeacherID
	}

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.Error(err))
		return nil, err
	}
	return s.toResponse(class), nil
}

// ────────────────────── Delete ──────────────────────

func (s *classService) Delete(ctx context.Context, id uint) error {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if class.AssignedStudents > 0 {
		return ErrClassNotEmpty
	}
	if err := s.repo.Class.Delete(ctx, id); err != nil {
		s.logger.Error("删除班级失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AssignStudents ──────────────────────

func (s *classService) AssignStudents(ctx context.Context, classID uint, studentIDs []uint) error {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	// 先整批校验，再一次事务落库
	userIDs := make([]uint, 0, len(studentIDs))
	for _, sid := range studentIDs {
		student, err := s.repo.Student.GetByID(ctx, sid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		if student.User == nil {
			return ErrNotAStudent
		}
		if student.User.ClassID != nil {
			return ErrStudentAlreadyAssigned
		}
		userIDs = append(userIDs, student.UserID)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	ok, err := txRepo.Class.AcquireSeats(ctx, classID, len(userIDs))
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("占用班级名额失败", zap.Error(err))
		return err
	}
	if !ok {
		if tx != nil {
			tx.Rollback()
		}
		return ErrClassCapacityExceeded
	}

	if err := txRepo.User.AssignClass(ctx, userIDs, &classID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入班级分配失败", zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}

	s.logger.Info("批量分配学生完成",
		zap.Uint("class_id", classID),
		zap.Int("count", len(userIDs)),
	)
	return nil
}

// ────────────────────── RemoveStudent ──────────────────────

func (s *classService) RemoveStudent(ctx context.Context, classID, studentID uint) error {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if student.User == nil || student.User.ClassID == nil || *student.User.ClassID != classID {
		return ErrStudentNotInClass
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.User.AssignClass(ctx, []uint{student.UserID}, nil); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}
	if err := txRepo.Class.ReleaseSeats(ctx, classID, 1); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		return tx.Commit().Error
	}
	return nil
}

// ────────────────────── RemoveStudents ──────────────────────

func (s *classService) RemoveStudents(ctx context.Context, classID uint, studentIDs []uint) (int, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrClassNotFound
		}
		return 0, err
	}

	// 只移出确实在该班的学生，其余跳过
	userIDs := make([]uint, 0, len(studentIDs))
	for _, sid := range studentIDs {
		student, err := s.repo.Student.GetByID(ctx, sid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return 0, err
		}
		if student.User == nil || student.User.ClassID == nil || *student.User.ClassID != classID {
			continue
		}
		userIDs = append(userIDs, student.UserID)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.User.AssignClass(ctx, userIDs, nil); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量移出学生失败", zap.Error(err))
		return 0, err
	}
	if err := txRepo.Class.ReleaseSeats(ctx, classID, len(userIDs)); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return 0, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return 0, err
		}
	}

	s.logger.Info("批量移出学生完成",
		zap.Uint("class_id", classID),
		zap.Int("count", len(userIDs)),
	)
	return len(userIDs), nil
}

// ────────────────────── TransferStudent ──────────────────────

func (s *classService) TransferStudent(ctx context.Context, studentID, targetClassID uint) error {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if student.User == nil || student.User.ClassID == nil {
		return ErrStudentNotInClass
	}
	sourceClassID := *student.User.ClassID
	if sourceClassID == targetClassID {
		return ErrStudentAlreadyAssigned
	}

	if _, err := s.repo.Class.GetByID(ctx, targetClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	ok, err := txRepo.Class.AcquireSeats(ctx, targetClassID, 1)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}
	if !ok {
		if tx != nil {
			tx.Rollback()
		}
		return ErrClassCapacityExceeded
	}

	if err := txRepo.Class.ReleaseSeats(ctx, sourceClassID, 1); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}
	if err := txRepo.User.AssignClass(ctx, []uint{student.UserID}, &targetClassID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return err
		}
	}

	s.logger.Info("学生转班完成",
		zap.Uint("student_id", studentID),
		zap.Uint("from", sourceClassID),
		zap.Uint("to", targetClassID),
	)
	return nil
}

// ────────────────────── ListStudents ──────────────────────

func (s *classService) ListStudents(ctx context.Context, classID uint) ([]dto.StudentProfileResponse, error) {
	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	students, err := s.repo.Student.ListByClassID(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentProfileResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		resp := dto.StudentProfileResponse{
			StudentID:     st.ID,
			StudentNo:     st.StudentNo,
			Major:         st.Major,
			AdmissionYear: st.AdmissionYear,
			Status:        st.Status,
		}
		if st.User != nil {
			resp.UserResponse = toUserResponse(st.User)
		}
		if st.ReportTime != nil {
			resp.ReportTime = st.ReportTime.Format(time.DateTime)
		}
		result = append(result, resp)
	}
	return result, nil
}

// ── 内部工具 ──

func (s *classService) toResponse(class *model.Class) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:               class.ID,
		Name:             class.Name,
		Department:       class.Department,
		Major:            class.Major,
		Year:             class.Year,
		Capacity:         class.Capacity,
		AssignedStudents: class.AssignedStudents,
		TeacherID:        class.TeacherID,
		CreatedAt:        class.CreatedAt.Format(time.DateTime),
	}
	if class.Teacher != nil {
		resp.TeacherName = class.Teacher.Name
	}
	return resp
}
