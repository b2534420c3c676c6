package model

// Teacher 教师档案 — 对应 teachers，与 users 一对一
type Teacher struct {
	BaseModel
	UserID       uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Department   string `gorm:"type:varchar(64)"     json:"department"`
	Title        string `gorm:"type:varchar(64)"     json:"title"`
	ResearchArea string `gorm:"type:varchar(64)"     json:"research_area"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
