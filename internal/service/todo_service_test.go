package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// ── 测试辅助 ──

func setupTestTodoService() (TodoService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewTodoService(repo, zap.NewNop())
	return svc, mocks
}

// seedTeacher 创建教师用户及教师档案
func seedTeacher(mocks *mockRepos, username string) (*model.User, *model.Teacher) {
	ctx := context.Background()
	user := &model.User{
		Username: username, Email: username + "@example.com",
		Role: model.RoleTeacher, Name: username, IsActive: true,
	}
	mocks.user.Create(ctx, user)
	teacher := &model.Teacher{UserID: user.ID, Department: "计算机学院"}
	mocks.teacher.Create(ctx, teacher)
	return user, teacher
}

// seedClassStudent 创建一名已入班的学生，班主任为 supervisorUserID
func seedClassStudent(mocks *mockRepos, username string, supervisorUserID uint) *model.Student {
	ctx := context.Background()
	class := seedClass(mocks, username+"的班级", 30)
	class.TeacherID = &supervisorUserID
	student := seedStudent(mocks, username, model.StudentStatusReported, 2026)
	user, _ := mocks.user.GetByID(ctx, student.UserID)
	user.ClassID = &class.ID
	return student
}

// ── Create 测试 ──

func TestTodoService_Create_AssignsToSupervisor(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, teacher := seedTeacher(mocks, "tch1")
	student := seedClassStudent(mocks, "stu1", supervisorUser.ID)

	resp, err := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{
		Title: "申请调换宿舍", Content: "室友作息冲突",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.TodoStatusPending {
		t.Errorf("期望状态=pending，实际=%s", resp.Status)
	}

	todo, _ := mocks.todo.GetByID(context.Background(), resp.ID)
	if todo.TeacherID == nil || *todo.TeacherID != teacher.ID {
		t.Errorf("待办应归属班主任教师档案 %d，实际=%v", teacher.ID, todo.TeacherID)
	}
}

func TestTodoService_Create_NoClassStaysUnassigned(t *testing.T) {
	svc, mocks := setupTestTodoService()
	student := seedStudent(mocks, "stu1", model.StudentStatusReported, 2026)

	resp, err := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "咨询"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	todo, _ := mocks.todo.GetByID(context.Background(), resp.ID)
	if todo.TeacherID != nil {
		t.Errorf("无班级学生的待办不应有归属教师，实际=%v", todo.TeacherID)
	}
}

func TestTodoService_Create_NotStudent(t *testing.T) {
	svc, mocks := setupTestTodoService()
	user, _ := seedTeacher(mocks, "tch1")

	_, err := svc.Create(context.Background(), user.ID, &dto.CreateTodoRequest{Title: "x"})
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

// ── Review 测试 ──

func TestTodoService_Review_Success(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")
	student := seedClassStudent(mocks, "stu1", supervisorUser.ID)

	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})

	resp, err := svc.Review(context.Background(), supervisorUser.ID, created.ID, &dto.ReviewTodoRequest{
		Status: model.TodoStatusCompleted, Comment: "已处理",
	})
	if err != nil {
		t.Fatalf("Review 应成功: %v", err)
	}
	if resp.Status != model.TodoStatusCompleted || resp.Comment != "已处理" {
		t.Errorf("处理结果不符，实际=%+v", resp)
	}
}

func TestTodoService_Review_NotOwner(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")
	otherUser, _ := seedTeacher(mocks, "tch2")
	student := seedClassStudent(mocks, "stu1", supervisorUser.ID)

	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})

	_, err := svc.Review(context.Background(), otherUser.ID, created.ID, &dto.ReviewTodoRequest{
		Status: model.TodoStatusCompleted,
	})
	if !errors.Is(err, ErrTodoForbidden) {
		t.Errorf("非归属班主任不应能处理，实际: %v", err)
	}
}

func TestTodoService_Review_AlreadyHandled(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")
	student := seedClassStudent(mocks, "stu1", supervisorUser.ID)

	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})
	if _, err := svc.Review(context.Background(), supervisorUser.ID, created.ID, &dto.ReviewTodoRequest{
		Status: model.TodoStatusRejected,
	}); err != nil {
		t.Fatalf("首次处理应成功: %v", err)
	}

	_, err := svc.Review(context.Background(), supervisorUser.ID, created.ID, &dto.ReviewTodoRequest{
		Status: model.TodoStatusCompleted,
	})
	if !errors.Is(err, ErrTodoAlreadyHandled) {
		t.Errorf("期望 ErrTodoAlreadyHandled，实际: %v", err)
	}
}

func TestTodoService_Review_NotFound(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")

	_, err := svc.Review(context.Background(), supervisorUser.ID, 999, &dto.ReviewTodoRequest{
		Status: model.TodoStatusCompleted,
	})
	if !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("期望 ErrTodoNotFound，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestTodoService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestTodoService()
	student := seedStudent(mocks, "stu1", model.StudentStatusReported, 2026)
	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})

	if err := svc.Delete(context.Background(), student.UserID, created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := mocks.todo.GetByID(context.Background(), created.ID); err == nil {
		t.Error("删除后不应再能查到待办")
	}
}

func TestTodoService_Delete_OnlyOwner(t *testing.T) {
	svc, mocks := setupTestTodoService()
	student := seedStudent(mocks, "stu1", model.StudentStatusReported, 2026)
	other := seedStudent(mocks, "stu2", model.StudentStatusReported, 2026)
	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})

	if err := svc.Delete(context.Background(), other.UserID, created.ID); !errors.Is(err, ErrTodoForbidden) {
		t.Errorf("期望 ErrTodoForbidden，实际: %v", err)
	}
}

func TestTodoService_Delete_HandledNotAllowed(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")
	student := seedClassStudent(mocks, "stu1", supervisorUser.ID)
	created, _ := svc.Create(context.Background(), student.UserID, &dto.CreateTodoRequest{Title: "申请"})
	svc.Review(context.Background(), supervisorUser.ID, created.ID, &dto.ReviewTodoRequest{Status: model.TodoStatusCompleted})

	if err := svc.Delete(context.Background(), student.UserID, created.ID); !errors.Is(err, ErrTodoAlreadyHandled) {
		t.Errorf("已处理待办不应可撤回，实际: %v", err)
	}
}

// ── List 测试 ──

func TestTodoService_ListMineAndForTeacher(t *testing.T) {
	svc, mocks := setupTestTodoService()
	supervisorUser, _ := seedTeacher(mocks, "tch1")
	s1 := seedClassStudent(mocks, "stu1", supervisorUser.ID)
	s2 := seedStudent(mocks, "stu2", model.StudentStatusReported, 2026)

	svc.Create(context.Background(), s1.UserID, &dto.CreateTodoRequest{Title: "申请一"})
	svc.Create(context.Background(), s1.UserID, &dto.CreateTodoRequest{Title: "申请二"})
	svc.Create(context.Background(), s2.UserID, &dto.CreateTodoRequest{Title: "他人申请"})

	mine, total, err := svc.ListMine(context.Background(), s1.UserID, &dto.ListTodosRequest{})
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if total != 2 || len(mine) != 2 {
		t.Errorf("期望本人 2 条，实际 total=%d len=%d", total, len(mine))
	}

	review, total, err := svc.ListForTeacher(context.Background(), supervisorUser.ID, &dto.ListTodosRequest{})
	if err != nil {
		t.Fatalf("ListForTeacher 应成功: %v", err)
	}
	if total != 2 || len(review) != 2 {
		t.Errorf("班主任应只看到归属自己的 2 条，实际 total=%d len=%d", total, len(review))
	}
}
