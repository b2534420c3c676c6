package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/response"
)

// ScoreHandler 成绩模块 HTTP 处理器
type ScoreHandler struct {
	scoreSvc service.ScoreService
}

// NewScoreHandler 创建 ScoreHandler
func NewScoreHandler(scoreSvc service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreSvc: scoreSvc}
}

// Import 上传 Excel 批量导入成绩
// POST /api/v1/scores/import
func (h *ScoreHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return
	}
	defer f.Close()

	result, err := h.scoreSvc.ImportExcel(c.Request.Context(), f)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, result)
}

// List 成绩列表（管理端）
// GET /api/v1/scores
func (h *ScoreHandler) List(c *gin.Context) {
	var req dto.ListScoresRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scores, total, err := h.scoreSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, scores, total, req.GetPage(), req.GetPageSize())
}

// GetMyScore 学生查询本人成绩
// GET /api/v1/scores/me
func (h *ScoreHandler) GetMyScore(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	score, err := h.scoreSvc.GetMyScore(c.Request.Context(), userID)
	if err != nil {
		h.handleScoreError(c, err)
		return
	}

	response.OK(c, score)
}

// Stats 成绩统计（均分、极值、分段分布）
// GET /api/v1/scores/stats
func (h *ScoreHandler) Stats(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	stats, err := h.scoreSvc.Stats(c.Request.Context(), year)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// RecomputeRanks 手动重算排名
// POST /api/v1/scores/recompute-ranks
func (h *ScoreHandler) RecomputeRanks(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))

	if err := h.scoreSvc.RecomputeRanks(c.Request.Context(), year); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// handleScoreError 统一处理成绩模块业务错误
func (h *ScoreHandler) handleScoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScoreNotFound):
		response.NotFound(c, 55001, "成绩不存在")
	case errors.Is(err, service.ErrScoreNotVisible):
		response.Forbidden(c, 55002, "成绩暂未开放查询")
	case errors.Is(err, service.ErrEmptyExcel):
		response.BadRequest(c, 55003, "Excel 内容为空")
	case errors.Is(err, service.ErrBadExcelTemplate):
		response.BadRequest(c, 55004, "Excel 模板格式不正确")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 22001, "学生不存在")
	default:
		response.InternalError(c)
	}
}
