package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// 性别：M 男 / F 女
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// User 用户表 — 对应 users
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"  json:"username"`
	Email        string `gorm:"type:varchar(120);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"             json:"-"`
	Role         string `gorm:"type:varchar(20);not null"              json:"role"`
	Name         string `gorm:"type:varchar(64)"                       json:"name"`
	Gender       string `gorm:"type:varchar(1)"                        json:"gender"`
	Contact      string `gorm:"type:varchar(64)"                       json:"contact"`
	Province     string `gorm:"type:varchar(64)"                       json:"province"`
	ClassID      *uint  `gorm:""                                       json:"class_id,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                  json:"is_active"`

	// 关联
	Class *Class `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}
