package dto

// ── 待办模块 DTO ──

// CreateTodoRequest 学生创建待办请求
type CreateTodoRequest struct {
	Title   string `json:"title"   binding:"required,min=1,max=100"`
	Content string `json:"content" binding:"omitempty,max=2000"`
}

// ReviewTodoRequest 班主任处理待办请求
type ReviewTodoRequest struct {
	Status  string `json:"status"  binding:"required,oneof=completed rejected"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// ListTodosRequest 待办列表查询
type ListTodosRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending completed rejected"`
}

// TodoResponse 待办响应
type TodoResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	Status      string `json:"status"`
	StudentID   *uint  `json:"student_id,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	Comment     string `json:"comment,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
