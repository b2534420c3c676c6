package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name       string `json:"name"       binding:"required,min=1,max=64"`
	Department string `json:"department" binding:"required,max=64"`
	Major      string `json:"major"      binding:"required,max=64"`
	Year       int    `json:"year"       binding:"required,min=2000,max=2100"`
	Capacity   int    `json:"capacity"   binding:"required,min=1,max=500"`
	TeacherID  *uint  `json:"teacher_id"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=1,max=64"`
	Department *string `json:"department" binding:"omitempty,max=64"`
	Major      *string `json:"major"      binding:"omitempty,max=64"`
	Year       *int    `json:"year"       binding:"omitempty,min=2000,max=2100"`
	Capacity   *int    `json:"capacity"   binding:"omitempty,min=1,max=500"`
	TeacherID  *uint   `json:"teacher_id"`
}

// ListClassesRequest 班级列表查询
type ListClassesRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=64"`
	Major      string `form:"major"      binding:"omitempty,max=64"`
	Year       int    `form:"year"       binding:"omitempty,min=2000,max=2100"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=64"`
}

// AssignStudentsRequest 批量分配学生请求
type AssignStudentsRequest struct {
	StudentIDs []uint `json:"student_ids" binding:"required,min=1,dive,min=1"`
}

// RemoveStudentsRequest 批量移出学生请求
type RemoveStudentsRequest struct {
	StudentIDs []uint `json:"student_ids" binding:"required,min=1,dive,min=1"`
}

// RemoveStudentsResponse 批量移出结果
type RemoveStudentsResponse struct {
	Removed int `json:"removed"` // 实际移出人数，不在班内的学生跳过
}

// TransferStudentRequest 学生转班请求
type TransferStudentRequest struct {
	TargetClassID uint `json:"target_class_id" binding:"required,min=1"`
}

// ClassResponse 班级响应
type ClassResponse struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	Department       string `json:"department"`
	Major            string `json:"major"`
	Year             int    `json:"year"`
	Capacity         int    `json:"capacity"`
	AssignedStudents int    `json:"assigned_students"`
	TeacherID        *uint  `json:"teacher_id,omitempty"`
	TeacherName      string `json:"teacher_name,omitempty"`
	CreatedAt        string `json:"created_at"`
}
