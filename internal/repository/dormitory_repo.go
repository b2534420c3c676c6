package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
)

// DormitoryRepository 宿舍数据访问接口（楼栋 / 房间 / 分配记录）
type DormitoryRepository interface {
	// 楼栋
	CreateBuilding(ctx context.Context, building *model.DormitoryBuilding) error
	GetBuilding(ctx context.Context, id uint) (*model.DormitoryBuilding, error)
	GetBuildingByName(ctx context.Context, name string) (*model.DormitoryBuilding, error)
	UpdateBuilding(ctx context.Context, building *model.DormitoryBuilding) error
	DeleteBuilding(ctx context.Context, id uint) error
	ListBuildings(ctx context.Context) ([]model.DormitoryBuilding, error)

	// 房间
	CreateRoom(ctx context.Context, room *model.DormitoryRoom) error
	GetRoom(ctx context.Context, id uint) (*model.DormitoryRoom, error)
	GetRoomByNumber(ctx context.Context, buildingID uint, roomNumber string) (*model.DormitoryRoom, error)
	UpdateRoom(ctx context.Context, room *model.DormitoryRoom) error
	DeleteRoom(ctx context.Context, id uint) error
	ListRoomsByBuilding(ctx context.Context, buildingID uint) ([]model.DormitoryRoom, error)

	// 分配
	CreateAssignment(ctx context.Context, assignment *model.DormitoryAssignment) error
	GetActiveByStudent(ctx context.Context, studentID uint) (*model.DormitoryAssignment, error)
	UpdateAssignment(ctx context.Context, assignment *model.DormitoryAssignment) error
	ListActiveByRoom(ctx context.Context, roomID uint) ([]model.DormitoryAssignment, error)
	CountActiveByRoom(ctx context.Context, roomID uint) (int64, error)
	CountActiveByBuilding(ctx context.Context, buildingID uint) (int64, error)
	ListUnassignedStudents(ctx context.Context, gender string, offset, limit int) ([]model.Student, int64, error)
}

// dormitoryRepo DormitoryRepository 的 GORM 实现
type dormitoryRepo struct {
	db *gorm.DB
}

// NewDormitoryRepo 创建 DormitoryRepository 实例
func NewDormitoryRepo(db *gorm.DB) DormitoryRepository {
	return &dormitoryRepo{db: db}
}

// ── 楼栋 ──

func (r *dormitoryRepo) CreateBuilding(ctx context.Context, building *model.DormitoryBuilding) error {
	return r.db.WithContext(ctx).Create(building).Error
}

func (r *dormitoryRepo) GetBuilding(ctx context.Context, id uint) (*model.DormitoryBuilding, error) {
	var building model.DormitoryBuilding
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&building).Error
	if err != nil {
		return nil, err
	}
	return &building, nil
}

func (r *dormitoryRepo) GetBuildingByName(ctx context.Context, name string) (*model.DormitoryBuilding, error) {
	var building model.DormitoryBuilding
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&building).Error
	if err != nil {
		return nil, err
	}
	return &building, nil
}

func (r *dormitoryRepo) UpdateBuilding(ctx context.Context, building *model.DormitoryBuilding) error {
	return r.db.WithContext(ctx).Save(building).Error
}

func (r *dormitoryRepo) DeleteBuilding(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.DormitoryBuilding{}, id).Error
}

func (r *dormitoryRepo) ListBuildings(ctx context.Context) ([]model.DormitoryBuilding, error) {
	var buildings []model.DormitoryBuilding
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&buildings).Error
	return buildings, err
}

// ── 房间 ──

func (r *dormitoryRepo) CreateRoom(ctx context.Context, room *model.DormitoryRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *dormitoryRepo) GetRoom(ctx context.Context, id uint) (*model.DormitoryRoom, error) {
	var room model.DormitoryRoom
	err := r.db.WithContext(ctx).
		Preload("Building").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *dormitoryRepo) GetRoomByNumber(ctx context.Context, buildingID uint, roomNumber string) (*model.DormitoryRoom, error) {
	var room model.DormitoryRoom
	err := r.db.WithContext(ctx).
		Where("building_id = ? AND room_number = ?", buildingID, roomNumber).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *dormitoryRepo) UpdateRoom(ctx context.Context, room *model.DormitoryRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *dormitoryRepo) DeleteRoom(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.DormitoryRoom{}, id).Error
}

func (r *dormitoryRepo) ListRoomsByBuilding(ctx context.Context, buildingID uint) ([]model.DormitoryRoom, error) {
	var rooms []model.DormitoryRoom
	err := r.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

// ── 分配 ──

func (r *dormitoryRepo) CreateAssignment(ctx context.Context, assignment *model.DormitoryAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *dormitoryRepo) GetActiveByStudent(ctx context.Context, studentID uint) (*model.DormitoryAssignment, error) {
	var assignment model.DormitoryAssignment
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("Room.Building").
		Where("student_id = ? AND status = ?", studentID, model.AssignmentStatusActive).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *dormitoryRepo) UpdateAssignment(ctx context.Context, assignment *model.DormitoryAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *dormitoryRepo) ListActiveByRoom(ctx context.Context, roomID uint) ([]model.DormitoryAssignment, error) {
	var assignments []model.DormitoryAssignment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.User").
		Where("room_id = ? AND status = ?", roomID, model.AssignmentStatusActive).
		Order("check_in_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *dormitoryRepo) CountActiveByRoom(ctx context.Context, roomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.DormitoryAssignment{}).
		Where("room_id = ? AND status = ?", roomID, model.AssignmentStatusActive).
		Count(&total).Error
	return total, err
}

func (r *dormitoryRepo) CountActiveByBuilding(ctx context.Context, buildingID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.DormitoryAssignment{}).
		Joins("JOIN dormitory_rooms ON dormitory_rooms.id = dormitory_assignments.room_id").
		Where("dormitory_rooms.building_id = ? AND dormitory_assignments.status = ?",
			buildingID, model.AssignmentStatusActive).
		Count(&total).Error
	return total, err
}

// ListUnassignedStudents 列出指定性别、没有在住记录的已报到学生
func (r *dormitoryRepo) ListUnassignedStudents(ctx context.Context, gender string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{}).
		Joins("JOIN users ON users.id = students.user_id").
		Where("students.status = ?", model.StudentStatusReported).
		Where("users.gender = ?", gender).
		Where("NOT EXISTS (SELECT 1 FROM dormitory_assignments da WHERE da.student_id = students.id AND da.status = ?)",
			model.AssignmentStatusActive)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("students.student_no ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
