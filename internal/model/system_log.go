package model

import "time"

// 系统日志类型
const (
	LogTypeLogin      = "login"       // 用户登录
	LogTypeRegister   = "register"    // 用户注册
	LogTypeSecurity   = "security"    // 修改密码、删除账号等安全操作
	LogTypeSettings   = "settings"    // 系统设置变更
	LogTypeEnrollment = "enrollment"  // 报到及状态改写
	LogTypeDormitory  = "dormitory"   // 住宿分配调整
	LogTypeSystemAuto = "system_auto" // 定时任务自动处理
)

// SystemLog 系统日志 — 对应 system_logs，只增不改
type SystemLog struct {
	ID        uint      `gorm:"primaryKey"                         json:"id"`
	UserID    *uint     `gorm:""                                   json:"user_id,omitempty"`
	Type      string    `gorm:"type:varchar(50)"                   json:"type"`
	Content   string    `gorm:"type:text"                          json:"content"`
	IPAddress string    `gorm:"type:varchar(50)"                   json:"ip_address"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (SystemLog) TableName() string { return "system_logs" }
