package model

import "time"

// 住宿分配状态
const (
	AssignmentStatusActive   = "active"   // 在住
	AssignmentStatusInactive = "inactive" // 已退宿 / 已换宿
)

// DormitoryBuilding 宿舍楼 — 对应 dormitory_buildings
// Gender 限定整栋楼的入住性别。
type DormitoryBuilding struct {
	BaseModel
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Gender      string `gorm:"type:varchar(1);not null"              json:"gender"`
	Description string `gorm:"type:varchar(200)"                     json:"description"`

	// 关联
	Rooms []DormitoryRoom `gorm:"foreignKey:BuildingID" json:"rooms,omitempty"`
}

// TableName 指定表名
func (DormitoryBuilding) TableName() string { return "dormitory_buildings" }

// DormitoryRoom 宿舍房间 — 对应 dormitory_rooms
// 同一栋楼内房间号唯一。
type DormitoryRoom struct {
	BaseModel
	BuildingID  uint   `gorm:"not null;uniqueIndex:uq_building_room" json:"building_id"`
	RoomNumber  string `gorm:"type:varchar(20);not null;uniqueIndex:uq_building_room" json:"room_number"`
	Capacity    int    `gorm:"not null;default:4"                    json:"capacity"`
	Description string `gorm:"type:varchar(200)"                     json:"description"`

	// 关联
	Building *DormitoryBuilding `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}

// TableName 指定表名
func (DormitoryRoom) TableName() string { return "dormitory_rooms" }

// DormitoryAssignment 住宿分配记录 — 对应 dormitory_assignments
// 换宿与退宿不删除历史记录，只把旧记录置为 inactive。
// 房间占用人数始终按 status='active' 实时统计，不做冗余计数。
type DormitoryAssignment struct {
	BaseModel
	StudentID    uint       `gorm:"not null;index:idx_assignment_student"       json:"student_id"`
	RoomID       uint       `gorm:"not null;index:idx_assignment_room"          json:"room_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"  json:"status"`
	CheckInDate  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"check_in_date"`
	CheckOutDate *time.Time `gorm:""                                            json:"check_out_date,omitempty"`

	// 关联
	Student *Student       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Room    *DormitoryRoom `gorm:"foreignKey:RoomID"    json:"room,omitempty"`
}

// TableName 指定表名
func (DormitoryAssignment) TableName() string { return "dormitory_assignments" }
