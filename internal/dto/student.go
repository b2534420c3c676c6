package dto

// ── 学生 / 报到模块 DTO ──

// ListStudentsRequest 学生列表查询
type ListStudentsRequest struct {
	PaginationRequest
	Status        string `form:"status"         binding:"omitempty,oneof=pending reported unreported"`
	Major         string `form:"major"          binding:"omitempty,max=64"`
	AdmissionYear int    `form:"admission_year" binding:"omitempty,min=2000,max=2100"`
	ClassID       uint   `form:"class_id"`
	Keyword       string `form:"keyword"        binding:"omitempty,max=64"`
}

// OverrideStatusRequest 管理端改写报到状态请求；不允许改回 pending
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=reported unreported"`
}

// SweepResultResponse 报到截止清扫结果
type SweepResultResponse struct {
	Expired int    `json:"expired"` // 本次置为 unreported 的人数
	Year    int    `json:"year"`    // 处理的入学年份
	RanAt   string `json:"ran_at"`
}
