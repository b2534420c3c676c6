package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// SendVerification 发送邮箱验证码
// POST /api/v1/auth/send-verification
func (h *AuthHandler) SendVerification(c *gin.Context) {
	var req dto.SendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.SendVerificationCode(c.Request.Context(), req.Email); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Register 注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// Refresh 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	tokens, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, tokens)
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp, ok := MustGetTokenMeta(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// handleAuthError 统一处理认证模块业务错误
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrUserDisabled):
		response.Forbidden(c, 11002, "账号已被停用")
	case errors.Is(err, service.ErrUsernameExists):
		response.BadRequest(c, 11003, "用户名已被占用")
	case errors.Is(err, service.ErrEmailExists):
		response.BadRequest(c, 11004, "邮箱已被注册")
	case errors.Is(err, service.ErrRegistrationClosed):
		response.Forbidden(c, 11005, "当前未开放注册")
	case errors.Is(err, service.ErrInvalidVerificationCode):
		response.BadRequest(c, 11006, "验证码错误或已过期")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Unauthorized(c, 11007, "刷新令牌无效")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11008, "用户不存在")
	default:
		response.InternalError(c)
	}
}
