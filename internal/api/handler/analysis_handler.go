package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// AnalysisHandler 招生分析报告 HTTP 处理器
type AnalysisHandler struct {
	analysisSvc service.AnalysisService
}

// NewAnalysisHandler 创建 AnalysisHandler
func NewAnalysisHandler(analysisSvc service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisSvc: analysisSvc}
}

// Report 生成指定年份的招生分析报告
// GET /api/v1/admin/analysis/report
func (h *AnalysisHandler) Report(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	report, err := h.analysisSvc.Report(c.Request.Context(), year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, report)
}
