package model

// Class 班级表 — 对应 classes
// AssignedStudents 为冗余计数，由分配/移除/转班操作在事务内维护，
// 且始终满足 0 <= AssignedStudents <= Capacity。
type Class struct {
	BaseModel
	Name             string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Department       string `gorm:"type:varchar(100);not null"             json:"department"`
	Major            string `gorm:"type:varchar(100);not null"             json:"major"`
	Year             int    `gorm:"not null"                               json:"year"`
	Capacity         int    `gorm:"not null;default:0"                     json:"capacity"`
	AssignedStudents int    `gorm:"not null;default:0"                     json:"assigned_students"`
	TeacherID        *uint  `gorm:""                                       json:"teacher_id,omitempty"`

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
