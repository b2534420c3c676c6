package dto

// ── 系统设置模块 DTO ──

// UpdateSettingsRequest 更新系统设置请求（仅允许白名单字段）
type UpdateSettingsRequest struct {
	SiteName                 *string  `json:"site_name"                  binding:"omitempty,min=1,max=100"`
	SiteDescription          *string  `json:"site_description"           binding:"omitempty,max=500"`
	MaintenanceMode          *bool    `json:"maintenance_mode"`
	AllowRegistration        *bool    `json:"allow_registration"`
	RequireEmailVerification *bool    `json:"require_email_verification"`
	ScoreVisible             *bool    `json:"score_visible"`
	StudentIDPrefix          *string  `json:"student_id_prefix"          binding:"omitempty,min=1,max=10"`
	DefaultStudentStatus     *string  `json:"default_student_status"     binding:"omitempty,oneof=pending reported unreported"`
	EnrollmentDeadline       *string  `json:"enrollment_deadline"        binding:"omitempty"` // RFC3339，空串表示清除
	Majors                   []string `json:"majors"                     binding:"omitempty,dive,min=1,max=64"`
	Departments              []string `json:"departments"                binding:"omitempty,dive,min=1,max=64"`
}

// SettingsResponse 系统设置响应
type SettingsResponse struct {
	SiteName                 string   `json:"site_name"`
	SiteDescription          string   `json:"site_description,omitempty"`
	MaintenanceMode          bool     `json:"maintenance_mode"`
	AllowRegistration        bool     `json:"allow_registration"`
	RequireEmailVerification bool     `json:"require_email_verification"`
	ScoreVisible             bool     `json:"score_visible"`
	StudentIDPrefix          string   `json:"student_id_prefix"`
	DefaultStudentStatus     string   `json:"default_student_status"`
	EnrollmentDeadline       string   `json:"enrollment_deadline,omitempty"`
	Majors                   []string `json:"majors"`
	Departments              []string `json:"departments"`
	UpdatedAt                string   `json:"updated_at"`
}
