package model

// 待办事项状态
const (
	TodoStatusPending   = "pending"
	TodoStatusCompleted = "completed"
	TodoStatusRejected  = "rejected"
)

// Todo 待办事项 — 对应 todos
// 学生发起，归属班主任处理；TeacherID 指向 teachers 表。
type Todo struct {
	BaseModel
	Title     string `gorm:"type:varchar(100);not null"                 json:"title"`
	Content   string `gorm:"type:text"                                  json:"content"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	StudentID *uint  `gorm:""                                           json:"student_id,omitempty"`
	TeacherID *uint  `gorm:""                                           json:"teacher_id,omitempty"`
	Comment   string `gorm:"type:text"                                  json:"comment"`

	// 关联
	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Todo) TableName() string { return "todos" }

// ValidTodoStatus 校验待办状态取值
func ValidTodoStatus(status string) bool {
	switch status {
	case TodoStatusPending, TodoStatusCompleted, TodoStatusRejected:
		return true
	}
	return false
}
