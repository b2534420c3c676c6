package dto

// ── 用户模块 DTO ──

// UpdateProfileRequest 更新个人资料请求（仅允许白名单字段）
type UpdateProfileRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=32"`
	Gender   *string `json:"gender"   binding:"omitempty,oneof=M F"`
	Contact  *string `json:"contact"  binding:"omitempty,max=32"`
	Province *string `json:"province" binding:"omitempty,max=32"`
}

// UpdateStudentProfileRequest 学生补充档案更新请求
type UpdateStudentProfileRequest struct {
	UpdateProfileRequest
	Major *string `json:"major" binding:"omitempty,max=64"`
}

// UpdateTeacherProfileRequest 教师补充档案更新请求
type UpdateTeacherProfileRequest struct {
	UpdateProfileRequest
	Department   *string `json:"department"    binding:"omitempty,max=64"`
	Title        *string `json:"title"         binding:"omitempty,max=64"`
	ResearchArea *string `json:"research_area" binding:"omitempty,max=64"`
}

// ListUsersRequest 用户列表查询（管理员）
type ListUsersRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin teacher student"`
	Keyword string `form:"keyword" binding:"omitempty,max=64"`
}

// AdminUpdateUserRequest 管理员更新用户请求
type AdminUpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=32"`
	Gender   *string `json:"gender"    binding:"omitempty,oneof=M F"`
	Contact  *string `json:"contact"   binding:"omitempty,max=32"`
	Province *string `json:"province"  binding:"omitempty,max=32"`
	IsActive *bool   `json:"is_active"`
}

// ResetPasswordRequest 管理员重置密码请求（为空时重置为默认密码）
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"omitempty,min=6,max=32"`
}
