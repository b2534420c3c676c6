package dto

// ── 认证模块 DTO ──

// SendVerificationRequest 发送邮箱验证码请求
type SendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RegisterRequest 注册请求
// 学生注册时 Code 为邮箱验证码（开启邮箱验证时必填）。
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=32"`
	Role     string `json:"role"     binding:"required,oneof=student teacher"`
	Name     string `json:"name"     binding:"required,min=1,max=32"`
	Gender   string `json:"gender"   binding:"omitempty,oneof=M F"`
	Contact  string `json:"contact"  binding:"omitempty,max=32"`
	Province string `json:"province" binding:"omitempty,max=32"`
	Major    string `json:"major"    binding:"omitempty,max=64"`
	Code     string `json:"code"`
}

// LoginRequest 登录请求（用户名或邮箱均可）
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=32"`
}
