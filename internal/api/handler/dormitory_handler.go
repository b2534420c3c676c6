package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// DormitoryHandler 宿舍模块 HTTP 处理器
type DormitoryHandler struct {
	dormSvc service.DormitoryService
}

// NewDormitoryHandler 创建 DormitoryHandler
func NewDormitoryHandler(dormSvc service.DormitoryService) *DormitoryHandler {
	return &DormitoryHandler{dormSvc: dormSvc}
}

// ────────────────────── 楼栋 ──────────────────────

// CreateBuilding 创建宿舍楼
// POST /api/v1/dormitories/buildings
func (h *DormitoryHandler) CreateBuilding(c *gin.Context) {
	var req dto.CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	building, err := h.dormSvc.CreateBuilding(c.Request.Context(), &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.Created(c, building)
}

// UpdateBuilding 更新宿舍楼
// PUT /api/v1/dormitories/buildings/:id
func (h *DormitoryHandler) UpdateBuilding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	building, err := h.dormSvc.UpdateBuilding(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, building)
}

// DeleteBuilding 删除宿舍楼（仅限无人在住）
// DELETE /api/v1/dormitories/buildings/:id
func (h *DormitoryHandler) DeleteBuilding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dormSvc.DeleteBuilding(c.Request.Context(), id); err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListBuildings 宿舍楼列表（含实时占用统计）
// GET /api/v1/dormitories/buildings
func (h *DormitoryHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.dormSvc.ListBuildings(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, buildings)
}

// ────────────────────── 房间 ──────────────────────

// CreateRoom 创建房间
// POST /api/v1/dormitories/rooms
func (h *DormitoryHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.dormSvc.CreateRoom(c.Request.Context(), &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.Created(c, room)
}

// UpdateRoom 更新房间
// PUT /api/v1/dormitories/rooms/:id
func (h *DormitoryHandler) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	room, err := h.dormSvc.UpdateRoom(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, room)
}

// DeleteRoom 删除房间（仅限无人在住）
// DELETE /api/v1/dormitories/rooms/:id
func (h *DormitoryHandler) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dormSvc.DeleteRoom(c.Request.Context(), id); err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListRooms 楼栋下房间列表
// GET /api/v1/dormitories/buildings/:id/rooms
func (h *DormitoryHandler) ListRooms(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rooms, err := h.dormSvc.ListRooms(c.Request.Context(), id)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, rooms)
}

// ListRoomOccupants 房间在住学生
// GET /api/v1/dormitories/rooms/:id/occupants
func (h *DormitoryHandler) ListRoomOccupants(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	occupants, err := h.dormSvc.ListRoomOccupants(c.Request.Context(), id)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, occupants)
}

// ────────────────────── 分配 ──────────────────────

// AssignRoom 分配住宿
// POST /api/v1/dormitories/assignments
func (h *DormitoryHandler) AssignRoom(c *gin.Context) {
	var req dto.AssignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.dormSvc.AssignRoom(c.Request.Context(), &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.Created(c, assignment)
}

// ChangeRoom 调换宿舍
// PUT /api/v1/dormitories/students/:studentID/room
func (h *DormitoryHandler) ChangeRoom(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentID")
	if !ok {
		return
	}

	var req dto.ChangeRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	assignment, err := h.dormSvc.ChangeRoom(c.Request.Context(), studentID, req.TargetRoomID)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, assignment)
}

// Checkout 学生退宿
// DELETE /api/v1/dormitories/students/:studentID/room
func (h *DormitoryHandler) Checkout(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentID")
	if !ok {
		return
	}

	if err := h.dormSvc.Checkout(c.Request.Context(), studentID); err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetStudentAssignment 查询学生当前住宿
// GET /api/v1/dormitories/students/:studentID/room
func (h *DormitoryHandler) GetStudentAssignment(c *gin.Context) {
	studentID, ok := parseIDParam(c, "studentID")
	if !ok {
		return
	}

	assignment, err := h.dormSvc.GetStudentAssignment(c.Request.Context(), studentID)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OK(c, assignment)
}

// ListUnassignedStudents 目标楼栋下已报到、性别相符且未分配宿舍的学生
// GET /api/v1/dormitories/unassigned-students?building_id=
func (h *DormitoryHandler) ListUnassignedStudents(c *gin.Context) {
	var req dto.ListUnassignedStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, total, err := h.dormSvc.ListUnassignedStudents(c.Request.Context(), &req)
	if err != nil {
		h.handleDormError(c, err)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// handleDormError 统一处理宿舍模块业务错误
func (h *DormitoryHandler) handleDormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBuildingNotFound):
		response.NotFound(c, 44001, "宿舍楼不存在")
	case errors.Is(err, service.ErrBuildingNameExists):
		response.Error(c, http.StatusConflict, 44002, "宿舍楼名称已存在")
	case errors.Is(err, service.ErrBuildingOccupied):
		response.BadRequest(c, 44003, "宿舍楼仍有学生在住")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 44004, "房间不存在")
	case errors.Is(err, service.ErrRoomNumberExists):
		response.Error(c, http.StatusConflict, 44005, "房间号已存在")
	case errors.Is(err, service.ErrRoomOccupied):
		response.BadRequest(c, 44006, "房间仍有学生在住")
	case errors.Is(err, service.ErrRoomFull):
		response.Error(c, http.StatusConflict, 44007, "房间床位已满")
	case errors.Is(err, service.ErrRoomCapacityTooSmall):
		response.BadRequest(c, 44008, "容量不能小于在住人数")
	case errors.Is(err, service.ErrGenderMismatch):
		response.BadRequest(c, 44009, "学生性别与楼栋不符")
	case errors.Is(err, service.ErrStudentAlreadyHoused):
		response.Error(c, http.StatusConflict, 44010, "学生已有在住宿舍")
	case errors.Is(err, service.ErrNoActiveAssignment):
		response.NotFound(c, 44011, "学生暂无在住宿舍")
	case errors.Is(err, service.ErrSameRoom):
		response.BadRequest(c, 44012, "目标房间与当前房间相同")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
