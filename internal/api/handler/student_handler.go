package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// StudentHandler 新生报到模块 HTTP 处理器
type StudentHandler struct {
	enrollSvc service.EnrollmentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(enrollSvc service.EnrollmentService) *StudentHandler {
	return &StudentHandler{enrollSvc: enrollSvc}
}

// Report 学生自助报到
// POST /api/v1/students/report
func (h *StudentHandler) Report(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	profile, err := h.enrollSvc.Report(c.Request.Context(), userID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, profile)
}

// OverrideStatus 管理端改写报到状态
// PUT /api/v1/students/:id/status
func (h *StudentHandler) OverrideStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.enrollSvc.OverrideStatus(c.Request.Context(), callerID, role, id, req.Status); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStudents 学生列表
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.ListStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, total, err := h.enrollSvc.ListStudents(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// Sweep 手动触发报到截止清扫
// POST /api/v1/admin/enrollment/sweep
func (h *StudentHandler) Sweep(c *gin.Context) {
	result, err := h.enrollSvc.Sweep(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// handleEnrollmentError 统一处理报到模块业务错误
func (h *StudentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	case errors.Is(err, service.ErrAlreadyReported):
		response.Error(c, http.StatusConflict, 22002, "已完成报到，请勿重复操作")
	case errors.Is(err, service.ErrDeadlinePassed):
		response.Forbidden(c, 22003, "已超过报到截止时间")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 22004, "非法的报到状态")
	case errors.Is(err, service.ErrNotClassSupervisor):
		response.Forbidden(c, 22005, "只能操作本班学生")
	default:
		response.InternalError(c)
	}
}
