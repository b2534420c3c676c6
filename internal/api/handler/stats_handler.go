package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// StatsHandler 统计模块 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Overview 驾驶舱总览
// GET /api/v1/stats/overview
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, overview)
}

// EnrollmentTrend 按日报到趋势
// GET /api/v1/stats/enrollment-trend
func (h *StatsHandler) EnrollmentTrend(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	trend, err := h.statsSvc.EnrollmentTrend(c.Request.Context(), year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, trend)
}

// Logs 系统日志列表
// GET /api/v1/admin/logs
func (h *StatsHandler) Logs(c *gin.Context) {
	var req dto.ListLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, total, err := h.statsSvc.ListLogs(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// LastLogins 最近登录记录
// GET /api/v1/stats/last-logins
func (h *StatsHandler) LastLogins(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logins, err := h.statsSvc.LastLogins(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, logins)
}
