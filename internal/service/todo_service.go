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

// ── 待办模块业务错误 ──

var (
	ErrTodoNotFound       = errors.New("待办事项不存在")
	ErrTodoAlreadyHandled = errors.New("待办事项已被处理")
	ErrTodoForbidden      = errors.New("无权操作该待办事项")
	ErrTeacherNotFound    = errors.New("教师不存在")
)

// TodoService 待办业务接口
type TodoService interface {
	// Create 学生发起待办，自动归属其班主任
	Create(ctx context.Context, userID uint, req *dto.CreateTodoRequest) (*dto.TodoResponse, error)
	ListMine(ctx context.Context, userID uint, req *dto.ListTodosRequest) ([]dto.TodoResponse, int64, error)
	ListForTeacher(ctx context.Context, userID uint, req *dto.ListTodosRequest) ([]dto.TodoResponse, int64, error)
	// Review 班主任处理：只能处理归属自己且仍为 pending 的事项
	Review(ctx context.Context, userID, todoID uint, req *dto.ReviewTodoRequest) (*dto.TodoResponse, error)
	// Delete 学生撤回本人未处理的待办
	Delete(ctx context.Context, userID, todoID uint) error
}

type todoService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTodoService 创建 TodoService 实例
func NewTodoService(repo *repository.Repository, logger *zap.Logger) TodoService {
	return &todoService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *todoService) Create(ctx context.Context, userID uint, req *dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	todo := &model.Todo{
		Title:     req.Title,
		Content:   req.Content,
		Status:    model.TodoStatusPending,
		StudentID: &student.ID,
	}

	// 找到班主任对应的教师档案；没有班级或班主任时保持未归属
	if student.User != nil && student.User.ClassID != nil {
		class, err := s.repo.Class.GetByID(ctx, *student.User.ClassID)
		if err == nil && class.TeacherID != nil {
			teacher, err := s.repo.Teacher.GetByUserID(ctx, *class.TeacherID)
			if err == nil {
				todo.TeacherID = &teacher.ID
			}
		}
	}

	if err := s.repo.Todo.Create(ctx, todo); err != nil {
		s.logger.Error("创建待办失败", zap.Error(err))
		return nil, err
	}

	todo.Student = student
	resp := toTodoResponse(todo)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *todoService) ListMine(ctx context.Context, userID uint, req *dto.ListTodosRequest) ([]dto.TodoResponse, int64, error) {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrStudentNotFound
		}
		return nil, 0, err
	}
	return s.list(ctx, repository.TodoFilter{
		Status:    req.Status,
		StudentID: student.ID,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
}

func (s *todoService) ListForTeacher(ctx context.Context, userID uint, req *dto.ListTodosRequest) ([]dto.TodoResponse, int64, error) {
	teacher, err := s.repo.Teacher.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTeacherNotFound
		}
		return nil, 0, err
	}
	return s.list(ctx, repository.TodoFilter{
		Status:    req.Status,
		TeacherID: teacher.ID,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
}

func (s *todoService) list(ctx context.Context, filter repository.TodoFilter) ([]dto.TodoResponse, int64, error) {
	todos, total, err := s.repo.Todo.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询待办列表失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.TodoResponse, 0, len(todos))
	for i := range todos {
		result = append(result, toTodoResponse(&todos[i]))
	}
	return result, total, nil
}

// ────────────────────── Review ──────────────────────

func (s *todoService) Review(ctx context.Context, userID, todoID uint, req *dto.ReviewTodoRequest) (*dto.TodoResponse, error) {
	teacher, err := s.repo.Teacher.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	todo, err := s.repo.Todo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}
	if todo.TeacherID == nil || *todo.TeacherID != teacher.ID {
		return nil, ErrTodoForbidden
	}
	if todo.Status != model.TodoStatusPending {
		return nil, ErrTodoAlreadyHandled
	}

	todo.Status = req.Status
	todo.Comment = req.Comment
	if err := s.repo.Todo.Update(ctx, todo); err != nil {
		s.logger.Error("处理待办失败", zap.Error(err))
		return nil, err
	}

	resp := toTodoResponse(todo)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *todoService) Delete(ctx context.Context, userID, todoID uint) error {
	student, err := s.repo.Student.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	todo, err := s.repo.Todo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTodoNotFound
		}
		return err
	}
	if todo.StudentID == nil || *todo.StudentID != student.ID {
		return ErrTodoForbidden
	}
	if todo.Status != model.TodoStatusPending {
		return ErrTodoAlreadyHandled
	}

	return s.repo.Todo.Delete(ctx, todoID)
}

// ── 内部工具 ──

func toTodoResponse(todo *model.Todo) dto.TodoResponse {
	resp := dto.TodoResponse{
		ID:        todo.ID,
		Title:     todo.Title,
		Content:   todo.Content,
		Status:    todo.Status,
		StudentID: todo.StudentID,
		Comment:   todo.Comment,
		CreatedAt: todo.CreatedAt.Format(time.DateTime),
		UpdatedAt: todo.UpdatedAt.Format(time.DateTime),
	}
	if todo.Student != nil && todo.Student.User != nil {
		resp.StudentName = todo.Student.User.Name
	}
	return resp
}
