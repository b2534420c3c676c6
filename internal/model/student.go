package model

import "time"

// 学生报到状态
const (
	StudentStatusPending    = "pending"    // 待报到
	StudentStatusReported   = "reported"   // 已报到
	StudentStatusUnreported = "unreported" // 逾期未报到
)

// Student 学生档案 — 对应 students，与 users 一对一
type Student struct {
	BaseModel
	UserID         uint       `gorm:"not null;uniqueIndex"                  json:"user_id"`
	StudentNo      string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"student_no"`
	Major          string     `gorm:"type:varchar(100)"                     json:"major"`
	AdmissionYear  int        `gorm:""                                      json:"admission_year"`
	AdmissionDate  *time.Time `gorm:""                                      json:"admission_date,omitempty"`
	GraduationDate *time.Time `gorm:""                                      json:"graduation_date,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReportTime     *time.Time `gorm:""                                      json:"report_time,omitempty"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// ValidOverrideStatus 管理端改写允许的目标状态；pending 是初始态，不允许改回
func ValidOverrideStatus(status string) bool {
	return status == StudentStatusReported || status == StudentStatusUnreported
}
