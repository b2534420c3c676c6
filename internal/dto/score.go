package dto

// ── 成绩模块 DTO ──

// ImportRowError 导入时单行失败明细
type ImportRowError struct {
	Row    int    `json:"row"`    // Excel 行号（从 2 起，首行为表头）
	Reason string `json:"reason"`
}

// ImportResultResponse 批量导入结果
type ImportResultResponse struct {
	Total    int              `json:"total"`    // 读到的数据行数
	Imported int              `json:"imported"` // 成功写入行数
	Skipped  int              `json:"skipped"`  // 已存在而跳过的行数
	Failed   []ImportRowError `json:"failed,omitempty"`
}

// ScoreResponse 成绩响应
type ScoreResponse struct {
	ID           uint     `json:"id"`
	StudentID    uint     `json:"student_id"`
	StudentNo    string   `json:"student_no,omitempty"`
	StudentName  string   `json:"student_name,omitempty"`
	Year         int      `json:"year"`
	Chinese      *float64 `json:"chinese,omitempty"`
	Math         *float64 `json:"math,omitempty"`
	English      *float64 `json:"english,omitempty"`
	Physics      *float64 `json:"physics,omitempty"`
	Chemistry    *float64 `json:"chemistry,omitempty"`
	Biology      *float64 `json:"biology,omitempty"`
	TotalScore   float64  `json:"total_score"`
	ProvinceRank *int     `json:"province_rank,omitempty"`
	MajorRank    *int     `json:"major_rank,omitempty"`
}

// ListScoresRequest 成绩列表查询
type ListScoresRequest struct {
	PaginationRequest
	Year    int    `form:"year"    binding:"omitempty,min=2000,max=2100"`
	Major   string `form:"major"   binding:"omitempty,max=64"`
	Keyword string `form:"keyword" binding:"omitempty,max=64"`
}
