package model

import (
	"time"

	"github.com/lib/pq"
)

// Settings 系统设置单例 — 对应 settings
// 首次读取时若不存在则以默认值创建，全库只保留一行。
type Settings struct {
	BaseModel
	SiteName                 string         `gorm:"type:varchar(100);not null;default:'新生入学可视化系统'" json:"site_name"`
	SiteDescription          string         `gorm:"type:text"                                   json:"site_description"`
	MaintenanceMode          bool           `gorm:"not null;default:false"                      json:"maintenance_mode"`
	AllowRegistration        bool           `gorm:"not null;default:true"                       json:"allow_registration"`
	RequireEmailVerification bool           `gorm:"not null;default:true"                       json:"require_email_verification"`
	ScoreVisible             bool           `gorm:"not null;default:true"                       json:"score_visible"`
	StudentIDPrefix          string         `gorm:"type:varchar(10);not null;default:'S'"       json:"student_id_prefix"`
	DefaultStudentStatus     string         `gorm:"type:varchar(20);not null;default:'pending'" json:"default_student_status"`
	EnrollmentDeadline       *time.Time     `gorm:""                                            json:"enrollment_deadline,omitempty"`
	Majors                   pq.StringArray `gorm:"type:text[]"                                 json:"majors"`
	Departments              pq.StringArray `gorm:"type:text[]"                                 json:"departments"`
}

// TableName 指定表名
func (Settings) TableName() string { return "settings" }

// DefaultSettings 返回初始设置
func DefaultSettings() *Settings {
	return &Settings{
		SiteName:                 "新生入学可视化系统",
		MaintenanceMode:          false,
		AllowRegistration:        true,
		RequireEmailVerification: true,
		ScoreVisible:             true,
		StudentIDPrefix:          "S",
		DefaultStudentStatus:     StudentStatusPending,
		Majors:                   pq.StringArray{"计算机科学与技术", "软件工程", "人工智能", "数据科学与大数据技术"},
		Departments:              pq.StringArray{"计算机学院", "软件学院", "人工智能学院"},
	}
}
