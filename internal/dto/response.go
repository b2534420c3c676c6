package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Province string `json:"province,omitempty"`
	ClassID  *uint  `json:"class_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

// StudentProfileResponse 学生档案响应（含用户信息）
type StudentProfileResponse struct {
	UserResponse
	StudentID      uint   `json:"student_id"`
	StudentNo      string `json:"student_no"`
	Major          string `json:"major"`
	AdmissionYear  int    `json:"admission_year"`
	AdmissionDate  string `json:"admission_date,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
	Status         string `json:"status"`
	ReportTime     string `json:"report_time,omitempty"`
	ClassName      string `json:"class_name,omitempty"`
}

// TeacherProfileResponse 教师档案响应（含用户信息）
type TeacherProfileResponse struct {
	UserResponse
	TeacherID    uint   `json:"teacher_id"`
	Department   string `json:"department"`
	Title        string `json:"title"`
	ResearchArea string `json:"research_area"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
