package service

import (
	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/config"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/jwt"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/mailer"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Enrollment EnrollmentService
	Class      ClassService
	Dormitory  DormitoryService
	Score      ScoreService
	Todo       TodoService
	Settings   SettingsService
	Stats      StatsService
	Importer   ImporterService
	Analysis   AnalysisService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	codes VerificationCodeStore,
	blacklist TokenBlacklist,
	mail mailer.Mailer,
	gen TextGenerator,
	logger *zap.Logger,
) *Service {
	stats := NewStatsService(repo, logger)
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, codes, blacklist, mail, logger),
		User:       NewUserService(repo, logger),
		Enrollment: NewEnrollmentService(repo, logger),
		Class:      NewClassService(repo, logger),
		Dormitory:  NewDormitoryService(repo, logger),
		Score:      NewScoreService(repo, logger),
		Todo:       NewTodoService(repo, logger),
		Settings:   NewSettingsService(repo, logger),
		Stats:      stats,
		Importer:   NewImporterService(repo, logger),
		Analysis:   NewAnalysisService(stats, gen, logger),
	}
}
