package dto

// ── 统计模块 DTO ──

// OverviewResponse 总览看板
type OverviewResponse struct {
	TotalStudents    int64            `json:"total_students"`
	ReportedCount    int64            `json:"reported_count"`
	PendingCount     int64            `json:"pending_count"`
	UnreportedCount  int64            `json:"unreported_count"`
	ReportRate       float64          `json:"report_rate"` // 已报到 / 总数，保留两位
	TotalClasses     int64            `json:"total_classes"`
	TotalTeachers    int64            `json:"total_teachers"`
	GenderRatio      map[string]int64 `json:"gender_ratio"`      // M/F -> 人数
	ProvinceTop      []NameCount      `json:"province_top"`      // 生源省份 Top10
	MajorDistribution []NameCount     `json:"major_distribution"`
}

// NameCount 名称-数量对
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// EnrollmentTrendResponse 按日报到趋势
type EnrollmentTrendResponse struct {
	Year   int         `json:"year"`
	Points []DateCount `json:"points"`
}

// DateCount 日期-数量对
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// LastLoginResponse 近期登录记录
type LastLoginResponse struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	IPAddress string `json:"ip_address,omitempty"`
	LoginAt   string `json:"login_at"`
}

// ListLogsRequest 系统日志查询（管理员）
type ListLogsRequest struct {
	PaginationRequest
	Type string `form:"type" binding:"omitempty,oneof=login register security settings enrollment dormitory system_auto"`
}

// SystemLogResponse 系统日志条目
type SystemLogResponse struct {
	ID        uint   `json:"id"`
	UserID    *uint  `json:"user_id,omitempty"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	IPAddress string `json:"ip_address,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ScoreStatsResponse 成绩统计
type ScoreStatsResponse struct {
	Year         int         `json:"year"`
	Count        int64       `json:"count"`
	AverageTotal float64     `json:"average_total"`
	MaxTotal     float64     `json:"max_total"`
	MinTotal     float64     `json:"min_total"`
	Segments     []NameCount `json:"segments"` // 分数段分布
}
