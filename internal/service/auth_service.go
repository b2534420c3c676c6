package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/config"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/model"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/jwt"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/mailer"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials      = errors.New("用户名或密码错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserDisabled            = errors.New("账号已被停用")
	ErrUsernameExists          = errors.New("用户名已被占用")
	ErrEmailExists             = errors.New("邮箱已被注册")
	ErrRegistrationClosed      = errors.New("当前未开放注册")
	ErrInvalidVerificationCode = errors.New("验证码错误或已过期")
	ErrInvalidRefreshToken     = errors.New("刷新令牌无效")
	ErrWrongOldPassword        = errors.New("原密码错误")
)

// 验证码 5 分钟内有效，消费即失效
const verificationCodeTTL = 5 * time.Minute

// TokenBlacklist 注销 Token 的黑名单存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// VerificationCodeStore 邮箱验证码存取（一次性消费）
type VerificationCodeStore interface {
	SetVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
	ConsumeVerificationCode(ctx context.Context, email, code string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	SendVerificationCode(ctx context.Context, email string) error
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	codes     VerificationCodeStore
	blacklist TokenBlacklist
	mailer    mailer.Mailer
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	codes VerificationCodeStore,
	blacklist TokenBlacklist,
	mail mailer.Mailer,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		codes:     codes,
		blacklist: blacklist,
		mailer:    mail,
		logger:    logger,
	}
}

// ────────────────────── SendVerificationCode ──────────────────────

func (s *authService) SendVerificationCode(ctx context.Context, email string) error {
	// 已注册邮箱不再下发验证码
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return err
	}

	code, err := randomCode(6)
	if err != nil {
		return err
	}
	if err := s.codes.SetVerificationCode(ctx, email, code, verificationCodeTTL); err != nil {
		s.logger.Error("写入验证码失败", zap.Error(err))
		return err
	}
	if err := s.mailer.SendVerificationCode(email, code); err != nil {
		s.logger.Error("发送验证码邮件失败", zap.String("email", email), zap.Error(err))
		return err
	}

	s.logger.Info("验证码已发送", zap.String("email", email))
	return nil
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	settings, err := s.repo.Settings.GetOrCreate(ctx)
	if err != nil {
		s.logger.Error("读取系统设置失败", zap.Error(err))
		return nil, err
	}
	if !settings.AllowRegistration {
		return nil, ErrRegistrationClosed
	}

	// 开启邮箱验证时，验证码必须匹配且未过期
	if settings.RequireEmailVerification {
		ok, err := s.codes.ConsumeVerificationCode(ctx, req.Email, req.Code)
		if err != nil {
			s.logger.Error("校验验证码失败", zap.Error(err))
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidVerificationCode
		}
	}

	// 唯一性检查
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Name:         req.Name,
		Gender:       req.Gender,
		Contact:      req.Contact,
		Province:     req.Province,
		IsActive:     true,
	}

	// 用户与档案同事务创建
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.User.Create(ctx, user); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	switch req.Role {
	case model.RoleStudent:
		if err := s.createStudentProfile(ctx, txRepo, user, req.Major, settings); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	case model.RoleTeacher:
		teacher := &model.Teacher{UserID: user.ID}
		if err := txRepo.Teacher.Create(ctx, teacher); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("创建教师档案失败", zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	logEntry := &model.SystemLog{
		UserID:  &user.ID,
		Type:    model.LogTypeRegister,
		Content: fmt.Sprintf("用户 %s 注册，角色 %s", user.Username, user.Role),
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入注册日志失败", zap.Error(err))
	}

	s.logger.Info("用户注册成功",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
	)
	resp := toUserResponse(user)
	return &resp, nil
}

// createStudentProfile 建立学生档案并分配学号
func (s *authService) createStudentProfile(
	ctx context.Context,
	txRepo *repository.Repository,
	user *model.User,
	major string,
	settings *model.Settings,
) error {
	year := time.Now().Year()
	studentNo, err := s.nextStudentNo(ctx, txRepo, settings.StudentIDPrefix, year)
	if err != nil {
		s.logger.Error("生成学号失败", zap.Error(err))
		return err
	}

	admission := time.Date(year, time.September, 1, 0, 0, 0, 0, time.Local)
	graduation := time.Date(year+4, time.June, 30, 0, 0, 0, 0, time.Local)

	student := &model.Student{
		UserID:         user.ID,
		StudentNo:      studentNo,
		Major:          major,
		AdmissionYear:  year,
		AdmissionDate:  &admission,
		GraduationDate: &graduation,
		Status:         settings.DefaultStudentStatus,
	}
	if err := txRepo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生档案失败", zap.Error(err))
		return err
	}
	return nil
}

// nextStudentNo 学号格式：前缀 + 年份 + 4 位递增序号，如 S20260001
func (s *authService) nextStudentNo(ctx context.Context, txRepo *repository.Repository, prefix string, year int) (string, error) {
	full := fmt.Sprintf("%s%d", prefix, year)
	max, err := txRepo.Student.MaxStudentNo(ctx, full)
	if err != nil {
		return "", err
	}
	seq := 1
	if max != "" && strings.HasPrefix(max, full) {
		if n, err := strconv.Atoi(max[len(full):]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", full, seq), nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	// 用户名或邮箱均可登录
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询用户失败", zap.Error(err))
			return nil, err
		}
		user, err = s.repo.User.GetByEmail(ctx, req.Username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	// 登录日志失败不影响登录
	logEntry := &model.SystemLog{
		UserID:    &user.ID,
		Type:      model.LogTypeLogin,
		Content:   fmt.Sprintf("用户 %s 登录", user.Username),
		IPAddress: ip,
	}
	if err := s.repo.SystemLog.Create(ctx, logEntry); err != nil {
		s.logger.Warn("写入登录日志失败", zap.Error(err))
	}

	return resp, nil
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("查询黑名单失败", zap.Error(err))
		return nil, err
	}
	if blacklisted {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	// 轮换：旧刷新令牌按剩余有效期拉黑
	if claims.ExpiresAt != nil {
		if remain := time.Until(claims.ExpiresAt.Time); remain > 0 {
			if err := s.blacklist.BlacklistToken(ctx, claims.ID, remain); err != nil {
				s.logger.Warn("拉黑旧刷新令牌失败", zap.Error(err))
			}
		}
	}

	return s.issueTokens(user)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	remain := time.Until(expiresAt)
	if remain <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, remain); err != nil {
		s.logger.Error("注销失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 内部工具 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Name:     user.Name,
		Gender:   user.Gender,
		Contact:  user.Contact,
		Province: user.Province,
		ClassID:  user.ClassID,
		IsActive: user.IsActive,
	}
}

// randomCode 生成 n 位数字验证码
func randomCode(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteString(d.String())
	}
	return sb.String(), nil
}
