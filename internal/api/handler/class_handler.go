package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// ClassHandler 班级模块 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// Create 创建班级
// POST /api/v1/classes
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// Get 班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	class, err := h.classSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// List 班级列表
// GET /api/v1/classes
func (h *ClassHandler) List(c *gin.Context) {
	var req dto.ListClassesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	classes, total, err := h.classSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, classes, total, req.GetPage(), req.GetPageSize())
}

// Update 更新班级
// PUT /api/v1/classes/:id
func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// Delete 删除班级（仅限空班级）
// DELETE /api/v1/classes/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignStudents 批量分配学生入班
// POST /api/v1/classes/:id/students
func (h *ClassHandler) AssignStudents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.classSvc.AssignStudents(c.Request.Context(), id, req.StudentIDs); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveStudent 将学生移出班级
// DELETE /api/v1/classes/:id/students/:studentID
func (h *ClassHandler) RemoveStudent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := parseIDParam(c, "studentID")
	if !ok {
		return
	}

	if err := h.classSvc.RemoveStudent(c.Request.Context(), id, studentID); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveStudents 批量移出学生
// DELETE /api/v1/classes/:id/students
func (h *ClassHandler) RemoveStudents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RemoveStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	removed, err := h.classSvc.RemoveStudents(c.Request.Context(), id, req.StudentIDs)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, dto.RemoveStudentsResponse{Removed: removed})
}

// TransferStudent 学生转班
// PUT /api/v1/classes/students/:studentID/transfer
func (h *ClassHandler) TransferStudent(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentID")
	if !ok {
		return
	}

	var req dto.TransferStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.classSvc.TransferStudent(c.Request.Context(), studentID, req.TargetClassID); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStudents 班级学生名单
// GET /api/v1/classes/:id/students
func (h *ClassHandler) ListStudents(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	students, err := h.classSvc.ListStudents(c.Request.Context(), id)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, students)
}

// handleClassError 统一处理班级模块业务错误
func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 33001, "班级不存在")
	case errors.Is(err, service.ErrClassNameExists):
		response.Error(c, http.StatusConflict, 33002, "班级名称已存在")
	case errors.Is(err, service.ErrClassNotEmpty):
		response.BadRequest(c, 33003, "班级内仍有学生，无法删除")
	case errors.Is(err, service.ErrClassCapacityExceeded):
		response.Error(c, http.StatusConflict, 33004, "班级容量不足")
	case errors.Is(err, service.ErrCapacityBelowAssigned):
		response.BadRequest(c, 33005, "容量不能小于已分配人数")
	case errors.Is(err, service.ErrStudentAlreadyAssigned):
		response.Error(c, http.StatusConflict, 33006, "学生已有班级")
	case errors.Is(err, service.ErrStudentNotInClass):
		response.BadRequest(c, 33007, "学生不在该班级")
	case errors.Is(err, service.ErrNotAStudent):
		response.BadRequest(c, 33008, "目标用户不是学生")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
