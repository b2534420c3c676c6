package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// ── 测试辅助 ──

func setupTestDormitoryService() (DormitoryService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewDormitoryService(repo, zap.NewNop())
	return svc, mocks
}

func seedBuilding(mocks *mockRepos, name, gender string) *model.DormitoryBuilding {
	building := &model.DormitoryBuilding{Name: name, Gender: gender}
	mocks.dormitory.CreateBuilding(context.Background(), building)
	return building
}

func seedRoom(mocks *mockRepos, buildingID uint, number string, capacity int) *model.DormitoryRoom {
	room := &model.DormitoryRoom{BuildingID: buildingID, RoomNumber: number, Capacity: capacity}
	mocks.dormitory.CreateRoom(context.Background(), room)
	return room
}

func seedGenderStudent(mocks *mockRepos, username, gender string) *model.Student {
	student := seedStudent(mocks, username, model.StudentStatusReported, 2026)
	user, _ := mocks.user.GetByID(context.Background(), student.UserID)
	user.Gender = gender
	return student
}

// ── 楼栋测试 ──

func TestDormitoryService_CreateBuilding_NameExists(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	seedBuilding(mocks, "A栋", model.GenderMale)

	_, err := svc.CreateBuilding(context.Background(), &dto.CreateBuildingRequest{
		Name: "A栋", Gender: model.GenderFemale,
	})
	if !errors.Is(err, ErrBuildingNameExists) {
		t.Errorf("期望 ErrBuildingNameExists，实际: %v", err)
	}
}

func TestDormitoryService_UpdateBuilding_GenderChangeBlockedWhileOccupied(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)

	if _, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{
		StudentID: student.ID, RoomID: room.ID,
	}); err != nil {
		t.Fatalf("前置分配应成功: %v", err)
	}

	gender := model.GenderFemale
	_, err := svc.UpdateBuilding(context.Background(), building.ID, &dto.UpdateBuildingRequest{Gender: &gender})
	if !errors.Is(err, ErrBuildingOccupied) {
		t.Errorf("有人在住时不应允许改性别，实际: %v", err)
	}
}

func TestDormitoryService_DeleteBuilding_Occupied(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room.ID})

	if err := svc.DeleteBuilding(context.Background(), building.ID); !errors.Is(err, ErrBuildingOccupied) {
		t.Errorf("期望 ErrBuildingOccupied，实际: %v", err)
	}
}

// ── 房间测试 ──

func TestDormitoryService_CreateRoom_DuplicateNumber(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	seedRoom(mocks, building.ID, "101", 4)

	_, err := svc.CreateRoom(context.Background(), &dto.CreateRoomRequest{
		BuildingID: building.ID, RoomNumber: "101", Capacity: 4,
	})
	if !errors.Is(err, ErrRoomNumberExists) {
		t.Errorf("期望 ErrRoomNumberExists，实际: %v", err)
	}
}

func TestDormitoryService_UpdateRoom_CapacityBelowOccupied(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	s1 := seedGenderStudent(mocks, "stu1", model.GenderMale)
	s2 := seedGenderStudent(mocks, "stu2", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: s1.ID, RoomID: room.ID})
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: s2.ID, RoomID: room.ID})

	capacity := 1
	_, err := svc.UpdateRoom(context.Background(), room.ID, &dto.UpdateRoomRequest{Capacity: &capacity})
	if !errors.Is(err, ErrRoomCapacityTooSmall) {
		t.Errorf("期望 ErrRoomCapacityTooSmall，实际: %v", err)
	}
}

// ── 分配测试 ──

func TestDormitoryService_AssignRoom_Success(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)

	resp, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{
		StudentID: student.ID, RoomID: room.ID,
	})
	if err != nil {
		t.Fatalf("AssignRoom 应成功: %v", err)
	}
	if resp.Status != model.AssignmentStatusActive {
		t.Errorf("期望状态=active，实际=%s", resp.Status)
	}
	occupied, _ := mocks.dormitory.CountActiveByRoom(context.Background(), room.ID)
	if occupied != 1 {
		t.Errorf("期望在住人数=1，实际=%d", occupied)
	}
}

func TestDormitoryService_AssignRoom_GenderMismatch(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderFemale)

	_, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{
		StudentID: student.ID, RoomID: room.ID,
	})
	if !errors.Is(err, ErrGenderMismatch) {
		t.Errorf("期望 ErrGenderMismatch，实际: %v", err)
	}
}

func TestDormitoryService_AssignRoom_RoomFull(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 2)
	s1 := seedGenderStudent(mocks, "stu1", model.GenderMale)
	s2 := seedGenderStudent(mocks, "stu2", model.GenderMale)
	s3 := seedGenderStudent(mocks, "stu3", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: s1.ID, RoomID: room.ID})
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: s2.ID, RoomID: room.ID})

	_, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: s3.ID, RoomID: room.ID})
	if !errors.Is(err, ErrRoomFull) {
		t.Errorf("期望 ErrRoomFull，实际: %v", err)
	}
}

func TestDormitoryService_AssignRoom_AlreadyHoused(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room1 := seedRoom(mocks, building.ID, "101", 4)
	room2 := seedRoom(mocks, building.ID, "102", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room1.ID})

	_, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room2.ID})
	if !errors.Is(err, ErrStudentAlreadyHoused) {
		t.Errorf("期望 ErrStudentAlreadyHoused，实际: %v", err)
	}
}

// ── 调换 / 退宿测试 ──

func TestDormitoryService_ChangeRoom_Success(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room1 := seedRoom(mocks, building.ID, "101", 4)
	room2 := seedRoom(mocks, building.ID, "102", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room1.ID})

	resp, err := svc.ChangeRoom(context.Background(), student.ID, room2.ID)
	if err != nil {
		t.Fatalf("ChangeRoom 应成功: %v", err)
	}
	if resp.RoomID != room2.ID {
		t.Errorf("期望新房间=%d，实际=%d", room2.ID, resp.RoomID)
	}

	// 旧记录保留为 inactive，新房间在住 1 人
	oldOccupied, _ := mocks.dormitory.CountActiveByRoom(context.Background(), room1.ID)
	if oldOccupied != 0 {
		t.Errorf("旧房间在住人数应为 0，实际=%d", oldOccupied)
	}
	var history int
	for _, a := range mocks.dormitory.assignments {
		if a.StudentID == student.ID && a.Status == model.AssignmentStatusInactive {
			if a.CheckOutDate == nil {
				t.Error("退宿记录应有退宿时间")
			}
			history++
		}
	}
	if history != 1 {
		t.Errorf("期望保留 1 条历史记录，实际=%d", history)
	}
}

func TestDormitoryService_ChangeRoom_SameRoom(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room.ID})

	if _, err := svc.ChangeRoom(context.Background(), student.ID, room.ID); !errors.Is(err, ErrSameRoom) {
		t.Errorf("期望 ErrSameRoom，实际: %v", err)
	}
}

func TestDormitoryService_Checkout_Success(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)
	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room.ID})

	if err := svc.Checkout(context.Background(), student.ID); err != nil {
		t.Fatalf("Checkout 应成功: %v", err)
	}
	if _, err := svc.GetStudentAssignment(context.Background(), student.ID); !errors.Is(err, ErrNoActiveAssignment) {
		t.Errorf("退宿后应无在住记录，实际: %v", err)
	}
}

func TestDormitoryService_Checkout_NoAssignment(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)

	if err := svc.Checkout(context.Background(), student.ID); !errors.Is(err, ErrNoActiveAssignment) {
		t.Errorf("期望 ErrNoActiveAssignment，实际: %v", err)
	}
}

// ── 未分配名单测试 ──

func TestDormitoryService_ListUnassignedStudents(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)

	housed := seedGenderStudent(mocks, "stu1", model.GenderMale)
	seedGenderStudent(mocks, "stu2", model.GenderMale)
	seedGenderStudent(mocks, "stu3", model.GenderFemale)         // 性别不符不参与分配
	seedStudent(mocks, "stu4", model.StudentStatusPending, 2026) // 未报到不参与分配

	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: housed.ID, RoomID: room.ID})

	students, total, err := svc.ListUnassignedStudents(context.Background(), &dto.ListUnassignedStudentsRequest{
		BuildingID: building.ID,
	})
	if err != nil {
		t.Fatalf("ListUnassignedStudents 应成功: %v", err)
	}
	if total != 1 || len(students) != 1 {
		t.Fatalf("期望 1 名待分配学生，实际 total=%d len=%d", total, len(students))
	}
	if students[0].Username != "stu2" {
		t.Errorf("期望待分配学生=stu2，实际=%s", students[0].Username)
	}
}

func TestDormitoryService_ListUnassignedStudents_BuildingNotFound(t *testing.T) {
	svc, _ := setupTestDormitoryService()

	_, _, err := svc.ListUnassignedStudents(context.Background(), &dto.ListUnassignedStudentsRequest{
		BuildingID: 9999,
	})
	if !errors.Is(err, ErrBuildingNotFound) {
		t.Errorf("期望 ErrBuildingNotFound，实际: %v", err)
	}
}

// ── 住宿审计日志测试 ──

func TestDormitoryService_AssignRoom_WritesAuditLog(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room := seedRoom(mocks, building.ID, "101", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)

	if _, err := svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{
		StudentID: student.ID, RoomID: room.ID,
	}); err != nil {
		t.Fatalf("AssignRoom 应成功: %v", err)
	}

	logs, total, _ := mocks.systemLog.ListByType(context.Background(), model.LogTypeDormitory, 0, 10)
	if total != 1 {
		t.Fatalf("入住应写入 1 条住宿日志，实际=%d", total)
	}
	if !strings.Contains(logs[0].Content, student.StudentNo) {
		t.Errorf("日志内容应包含学号，实际=%s", logs[0].Content)
	}
}

func TestDormitoryService_ChangeAndCheckout_WriteAuditLogs(t *testing.T) {
	svc, mocks := setupTestDormitoryService()
	building := seedBuilding(mocks, "A栋", model.GenderMale)
	room1 := seedRoom(mocks, building.ID, "101", 4)
	room2 := seedRoom(mocks, building.ID, "102", 4)
	student := seedGenderStudent(mocks, "stu1", model.GenderMale)

	svc.AssignRoom(context.Background(), &dto.AssignRoomRequest{StudentID: student.ID, RoomID: room1.ID})
	if _, err := svc.ChangeRoom(context.Background(), student.ID, room2.ID); err != nil {
		t.Fatalf("ChangeRoom 应成功: %v", err)
	}
	if err := svc.Checkout(context.Background(), student.ID); err != nil {
		t.Fatalf("Checkout 应成功: %v", err)
	}

	_, total, _ := mocks.systemLog.ListByType(context.Background(), model.LogTypeDormitory, 0, 10)
	if total != 3 {
		t.Errorf("入住、调换、退宿各应写入 1 条住宿日志，实际=%d", total)
	}
}
