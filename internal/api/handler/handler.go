package handler

import "github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Student   *StudentHandler
	Class     *ClassHandler
	Dormitory *DormitoryHandler
	Score     *ScoreHandler
	Todo      *TodoHandler
	Settings  *SettingsHandler
	Stats     *StatsHandler
	Importer  *ImporterHandler
	Analysis  *AnalysisHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User),
		Student:   NewStudentHandler(svc.Enrollment),
		Class:     NewClassHandler(svc.Class),
		Dormitory: NewDormitoryHandler(svc.Dormitory),
		Score:     NewScoreHandler(svc.Score),
		Todo:      NewTodoHandler(svc.Todo),
		Settings:  NewSettingsHandler(svc.Settings),
		Stats:     NewStatsHandler(svc.Stats),
		Importer:  NewImporterHandler(svc.Importer),
		Analysis:  NewAnalysisHandler(svc.Analysis),
	}
}
