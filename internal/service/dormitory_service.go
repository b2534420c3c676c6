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

// ── 宿舍模块业务错误 ──

var (
	ErrBuildingNotFound     = errors.New("宿舍楼不存在")
	ErrBuildingNameExists   = errors.New("宿舍楼名称已存在")
	ErrBuildingOccupied     = errors.New("宿舍楼仍有学生在住，无法删除")
	ErrRoomNotFound         = errors.New("房间不存在")
	ErrRoomNumberExists     = errors.New("房间号已存在")
	ErrRoomOccupied         = errors.New("房间仍有学生在住，无法删除")
	ErrRoomFull             = errors.New("房间已住满")
	ErrRoomCapacityTooSmall = errors.New("容量不能小于当前在住人数")
	ErrGenderMismatch       = errors.New("学生性别与宿舍楼不符")
	ErrStudentAlreadyHoused = errors.New("学生已有在住宿舍")
	ErrNoActiveAssignment   = errors.New("学生当前没有在住记录")
	ErrSameRoom             = errors.New("目标房间与当前房间相同")
)

// DormitoryService 宿舍业务接口
type DormitoryService interface {
	// 楼栋
	CreateBuilding(ctx context.Context, req *dto.CreateBuildingRequest) (*dto.BuildingResponse, error)
	UpdateBuilding(ctx context.Context, id uint, req *dto.UpdateBuildingRequest) (*dto.BuildingResponse, error)
	DeleteBuilding(ctx context.Context, id uint) error
	ListBuildings(ctx context.Context) ([]dto.BuildingResponse, error)

	// 房间
	CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	UpdateRoom(ctx context.Context, id uint, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	DeleteRoom(ctx context.Context, id uint) error
	ListRooms(ctx context.Context, buildingID uint) ([]dto.RoomResponse, error)
	ListRoomOccupants(ctx context.Context, roomID uint) ([]dto.AssignmentResponse, error)

	// 分配
	AssignRoom(ctx context.Context, req *dto.AssignRoomRequest) (*dto.AssignmentResponse, error)
	ChangeRoom(ctx context.Context, studentID, targetRoomID uint) (*dto.AssignmentResponse, error)
	Checkout(ctx context.Context, studentID uint) error
	GetStudentAssignment(ctx context.Context, studentID uint) (*dto.AssignmentResponse, error)
	// ListUnassignedStudents 目标楼栋视角：已报到、性别相符且没有在住记录的学生
	ListUnassignedStudents(ctx context.Context, req *dto.ListUnassignedStudentsRequest) ([]dto.StudentProfileResponse, int64, error)
}

type dormitoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDormitoryService 创建 DormitoryService 实例
func NewDormitoryService(repo *repository.Repository, logger *zap.Logger) DormitoryService {
	return &dormitoryService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── 楼栋 ──────────────────────

func (s *dormitoryService) CreateBuilding(ctx context.Context, req *dto.CreateBuildingRequest) (*dto.BuildingResponse, error) {
	existing, err := s.repo.Dormitory.GetBuildingByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询宿舍楼失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrBuildingNameExists
	}

	building := &model.DormitoryBuilding{
		Name:        req.Name,
		Gender:      req.Gender,
		Description: req.Description,
	}
	if err := s.repo.Dormitory.CreateBuilding(ctx, building); err != nil {
		s.logger.Error("创建宿舍楼失败", zap.Error(err))
		return nil, err
	}
	return s.toBuildingResponse(ctx, building)
}

func (s *dormitoryService) UpdateBuilding(ctx context.Context, id uint, req *dto.UpdateBuildingRequest) (*dto.BuildingResponse, error) {
	building, err := s.repo.Dormitory.GetBuilding(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != building.Name {
		existing, err := s.repo.Dormitory.GetBuildingByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrBuildingNameExists
		}
		building.Name = *req.Name
	}
	// 有人在住时不允许改性别
	if req.Gender != nil && *req.Gender != building.Gender {
		occupied, err := s.repo.Dormitory.CountActiveByBuilding(ctx, id)
		if err != nil {
			return nil, err
		}
		if occupied > 0 {
			return nil, ErrBuildingOccupied
		}
		building.Gender = *req.Gender
	}
	if req.Description != nil {
		building.Description = *req.Description
	}

	if err := s.repo.Dormitory.UpdateBuilding(ctx, building); err != nil {
		s.logger.Error("更新宿舍楼失败", zap.Error(err))
		return nil, err
	}
	return s.toBuildingResponse(ctx, building)
}

func (s *dormitoryService) DeleteBuilding(ctx context.Context, id uint) error {
	if _, err := s.repo.Dormitory.GetBuilding(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBuildingNotFound
		}
		return err
	}
	occupied, err := s.repo.Dormitory.CountActiveByBuilding(ctx, id)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return ErrBuildingOccupied
	}
	if err := s.repo.Dormitory.DeleteBuilding(ctx, id); err != nil {
		s.logger.Error("删除宿舍楼失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *dormitoryService) ListBuildings(ctx context.Context) ([]dto.BuildingResponse, error) {
	buildings, err := s.repo.Dormitory.ListBuildings(ctx)
	if err != nil {
		s.logger.Error("查询宿舍楼列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BuildingResponse, 0, len(buildings))
	for i := range buildings {
		resp, err := s.toBuildingResponse(ctx, &buildings[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

// ────────────────────── 房间 ──────────────────────

func (s *dormitoryService) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if _, err := s.repo.Dormitory.GetBuilding(ctx, req.BuildingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}

	existing, err := s.repo.Dormitory.GetRoomByNumber(ctx, req.BuildingID, req.RoomNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoomNumberExists
	}

	room := &model.DormitoryRoom{
		BuildingID:  req.BuildingID,
		RoomNumber:  req.RoomNumber,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := s.repo.Dormitory.CreateRoom(ctx, room); err != nil {
		s.logger.Error("创建房间失败", zap.Error(err))
		return nil, err
	}
	return &dto.RoomResponse{
		ID:          room.ID,
		BuildingID:  room.BuildingID,
		RoomNumber:  room.RoomNumber,
		Capacity:    room.Capacity,
		Description: room.Description,
	}, nil
}

func (s *dormitoryService) UpdateRoom(ctx context.Context, id uint, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.repo.Dormitory.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	occupied, err := s.repo.Dormitory.CountActiveByRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil && *req.RoomNumber != room.RoomNumber {
		existing, err := s.repo.Dormitory.GetRoomByNumber(ctx, room.BuildingID, *req.RoomNumber)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrRoomNumberExists
		}
		room.RoomNumber = *req.RoomNumber
	}
	if req.Capacity != nil {
		if int64(*req.Capacity) < occupied {
			return nil, ErrRoomCapacityTooSmall
		}
		room.Capacity = *req.Capacity
	}
	if req.Description != nil {
		room.Description = *req.Description
	}

	if err := s.repo.Dormitory.UpdateRoom(ctx, room); err != nil {
		s.logger.Error("更新房间失败", zap.Error(err))
		return nil, err
	}
	return &dto.RoomResponse{
		ID:          room.ID,
		BuildingID:  room.BuildingID,
		RoomNumber:  room.RoomNumber,
		Capacity:    room.Capacity,
		Occupied:    int(occupied),
		Description: room.Description,
	}, nil
}

func (s *dormitoryService) DeleteRoom(ctx context.Context, id uint) error {
	if _, err := s.repo.Dormitory.GetRoom(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	occupied, err := s.repo.Dormitory.CountActiveByRoom(ctx, id)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return ErrRoomOccupied
	}
	if err := s.repo.Dormitory.DeleteRoom(ctx, id); err != nil {
		s.logger.Error("删除房间失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *dormitoryService) ListRooms(ctx context.Context, buildingID uint) ([]dto.RoomResponse, error) {
	if _, err := s.repo.Dormitory.GetBuilding(ctx, buildingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}

	rooms, err := s.repo.Dormitory.ListRoomsByBuilding(ctx, buildingID)
	if err != nil {
		s.logger.Error("查询房间列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		occupied, err := s.repo.Dormitory.CountActiveByRoom(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, dto.RoomResponse{
			ID:          rooms[i].ID,
			BuildingID:  rooms[i].BuildingID,
			RoomNumber:  rooms[i].RoomNumber,
			Capacity:    rooms[i].Capacity,
			Occupied:    int(occupied),
			Description: rooms[i].Description,
		})
	}
	return result, nil
}

func (s *dormitoryService) ListRoomOccupants(ctx context.Context, roomID uint) ([]dto.AssignmentResponse, error) {
	if _, err := s.repo.Dormitory.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	assignments, err := s.repo.Dormitory.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *toAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

// ────────────────────── 分配 ──────────────────────

func (s *dormitoryService) AssignRoom(ctx context.Context, req *dto.AssignRoomRequest) (*dto.AssignmentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// 已有在住记录不可重复分配
	if _, err := s.repo.Dormitory.GetActiveByStudent(ctx, req.StudentID); err == nil {
		return nil, ErrStudentAlreadyHoused
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room, err := s.repo.Dormitory.GetRoom(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	// 名额核对与入住写入同事务完成，避免并发超住
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := s.checkRoomFits(ctx, txRepo, student, room); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	assignment := &model.DormitoryAssignment{
		StudentID:   req.StudentID,
		RoomID:      req.RoomID,
		Status:      model.AssignmentStatusActive,
		CheckInDate: s.now(),
	}
	if err := txRepo.Dormitory.CreateAssignment(ctx, assignment); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建住宿分配失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	s.auditLog(ctx, fmt.Sprintf("学生 %s 入住房间 %s", student.StudentNo, room.RoomNumber))
	s.logger.Info("住宿分配完成",
		zap.Uint("student_id", req.StudentID),
		zap.Uint("room_id", req.RoomID),
	)
	assignment.Student = student
	assignment.Room = room
	return toAssignmentResponse(assignment), nil
}

func (s *dormitoryService) ChangeRoom(ctx context.Context, studentID, targetRoomID uint) (*dto.AssignmentResponse, error) {
	current, err := s.repo.Dormitory.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveAssignment
		}
		return nil, err
	}
	if current.RoomID == targetRoomID {
		return nil, ErrSameRoom
	}

	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.Dormitory.GetRoom(ctx, targetRoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	// 名额核对、旧记录退宿、新记录入住同事务完成
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := s.checkRoomFits(ctx, txRepo, student, room); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	now := s.now()
	current.Status = model.AssignmentStatusInactive
	current.CheckOutDate = &now
	if err := txRepo.Dormitory.UpdateAssignment(ctx, current); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	assignment := &model.DormitoryAssignment{
		StudentID:   studentID,
		RoomID:      targetRoomID,
		Status:      model.AssignmentStatusActive,
		CheckInDate: now,
	}
	if err := txRepo.Dormitory.CreateAssignment(ctx, assignment); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	s.auditLog(ctx, fmt.Sprintf("学生 %s 调换至房间 %s", student.StudentNo, room.RoomNumber))
	s.logger.Info("调换宿舍完成",
		zap.Uint("student_id", studentID),
		zap.Uint("from_room", current.RoomID),
		zap.Uint("to_room", targetRoomID),
	)
	assignment.Student = student
	assignment.Room = room
	return toAssignmentResponse(assignment), nil
}

func (s *dormitoryService) Checkout(ctx context.Context, studentID uint) error {
	current, err := s.repo.Dormitory.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveAssignment
		}
		return err
	}

	now := s.now()
	current.Status = model.AssignmentStatusInactive
	current.CheckOutDate = &now
	if err := s.repo.Dormitory.UpdateAssignment(ctx, current); err != nil {
		s.logger.Error("退宿失败", zap.Error(err))
		return err
	}

	s.auditLog(ctx, fmt.Sprintf("学生 %d 退宿", studentID))
	return nil
}

func (s *dormitoryService) GetStudentAssignment(ctx context.Context, studentID uint) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Dormitory.GetActiveByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveAssignment
		}
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *dormitoryService) ListUnassignedStudents(ctx context.Context, req *dto.ListUnassignedStudentsRequest) ([]dto.StudentProfileResponse, int64, error) {
	building, err := s.repo.Dormitory.GetBuilding(ctx, req.BuildingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrBuildingNotFound
		}
		return nil, 0, err
	}

	students, total, err := s.repo.Dormitory.ListUnassignedStudents(ctx, building.Gender, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询未分配学生失败", zap.Error(err))
		return nil, 0, err
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
		result = append(result, resp)
	}
	return result, total, nil
}

// ── 内部工具 ──

// checkRoomFits 性别必须与楼栋一致，且实时在住人数未达容量；
// 在住人数在调用方的事务内统计
func (s *dormitoryService) checkRoomFits(ctx context.Context, repo *repository.Repository, student *model.Student, room *model.DormitoryRoom) error {
	building := room.Building
	if building == nil {
		b, err := repo.Dormitory.GetBuilding(ctx, room.BuildingID)
		if err != nil {
			return err
		}
		building = b
	}
	if student.User == nil || student.User.Gender == "" || student.User.Gender != building.Gender {
		return ErrGenderMismatch
	}

	occupied, err := repo.Dormitory.CountActiveByRoom(ctx, room.ID)
	if err != nil {
		return err
	}
	if occupied >= int64(room.Capacity) {
		return ErrRoomFull
	}
	return nil
}

// auditLog 住宿变动日志，失败只告警不影响主流程
func (s *dormitoryService) auditLog(ctx context.Context, content string) {
	logEntry := &model.SystemLog{
		Type:    model.LogTypeDormitory,
		Content: content,
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入住宿日志失败", zap.Error(err))
	}
}

func (s *dormitoryService) toBuildingResponse(ctx context.Context, building *model.DormitoryBuilding) (*dto.BuildingResponse, error) {
	rooms, err := s.repo.Dormitory.ListRoomsByBuilding(ctx, building.ID)
	if err != nil {
		return nil, err
	}
	capacity := 0
	for i := range rooms {
		capacity += rooms[i].Capacity
	}
	occupied, err := s.repo.Dormitory.CountActiveByBuilding(ctx, building.ID)
	if err != nil {
		return nil, err
	}

	return &dto.BuildingResponse{
		ID:          building.ID,
		Name:        building.Name,
		Gender:      building.Gender,
		Description: building.Description,
		RoomCount:   len(rooms),
		Capacity:    capacity,
		Occupied:    int(occupied),
		CreatedAt:   building.CreatedAt.Format(time.DateTime),
	}, nil
}

func toAssignmentResponse(a *model.DormitoryAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:          a.ID,
		StudentID:   a.StudentID,
		RoomID:      a.RoomID,
		Status:      a.Status,
		CheckInDate: a.CheckInDate.Format(time.DateTime),
	}
	if a.CheckOutDate != nil {
		resp.CheckOutDate = a.CheckOutDate.Format(time.DateTime)
	}
	if a.Student != nil {
		resp.StudentNo = a.Student.StudentNo
		if a.Student.User != nil {
			resp.StudentName = a.Student.User.Name
		}
	}
	if a.Room != nil {
		resp.RoomNumber = a.Room.RoomNumber
		if a.Room.Building != nil {
			resp.BuildingName = a.Room.Building.Name
		}
	}
	return resp
}
