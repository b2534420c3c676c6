package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// TodoHandler 待办模块 HTTP 处理器
type TodoHandler struct {
	todoSvc service.TodoService
}

// NewTodoHandler 创建 TodoHandler
func NewTodoHandler(todoSvc service.TodoService) *TodoHandler {
	return &TodoHandler{todoSvc: todoSvc}
}

// Create 学生发起待办
// POST /api/v1/todos
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	todo, err := h.todoSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTodoError(c, err)
		return
	}

	response.Created(c, todo)
}

// ListMine 学生查看本人待办
// GET /api/v1/todos/mine
func (h *TodoHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListTodosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	todos, total, err := h.todoSvc.ListMine(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTodoError(c, err)
		return
	}

	response.OKPage(c, todos, total, req.GetPage(), req.GetPageSize())
}

// ListForTeacher 班主任查看归属自己的待办
// GET /api/v1/todos/review
func (h *TodoHandler) ListForTeacher(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ListTodosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	todos, total, err := h.todoSvc.ListForTeacher(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTodoError(c, err)
		return
	}

	response.OKPage(c, todos, total, req.GetPage(), req.GetPageSize())
}

// Review 班主任处理待办
// PUT /api/v1/todos/:id/review
func (h *TodoHandler) Review(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	todo, err := h.todoSvc.Review(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleTodoError(c, err)
		return
	}

	response.OK(c, todo)
}

// Delete 学生撤回待办
// DELETE /api/v1/todos/:id
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.todoSvc.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleTodoError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTodoError 统一处理待办模块业务错误
func (h *TodoHandler) handleTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		response.NotFound(c, 66001, "待办不存在")
	case errors.Is(err, service.ErrTodoAlreadyHandled):
		response.Error(c, http.StatusConflict, 66002, "待办已处理")
	case errors.Is(err, service.ErrTodoForbidden):
		response.Forbidden(c, 66003, "无权操作该待办")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 66004, "班主任不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
