package dto

// ── 智能分析模块 DTO ──

// AnalysisReportResponse 招生分析报告
// Generated 标记正文来源：true 为生成服务输出，false 为本地统计摘要降级。
type AnalysisReportResponse struct {
	Year      int    `json:"year"`
	Report    string `json:"report"`
	Generated bool   `json:"generated"`
	CreatedAt string `json:"created_at"`
}
