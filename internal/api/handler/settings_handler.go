package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// SettingsHandler 系统设置模块 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// Get 查询系统设置
// GET /api/v1/admin/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, settings)
}

// Update 更新系统设置（白名单字段）
// PUT /api/v1/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	settings, err := h.settingsSvc.Update(c.Request.Context(), callerID, &req)
	if err != nil {
		if errors.Is(err, service.ErrBadDeadlineFormat) {
			response.BadRequest(c, 77001, "截止时间格式不正确，应为 RFC3339")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, settings)
}
