package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
)

const analysisSystemPrompt = "你是高校招生数据分析助手，请根据给出的统计数据撰写一份简明的中文分析报告，" +
	"包含报到进度、生源结构和需要关注的风险点，控制在 300 字以内。"

// TextGenerator 分析报告正文的生成服务
type TextGenerator interface {
	Enabled() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnalysisService 招生分析业务接口
type AnalysisService interface {
	// Report 生成招生分析报告；生成服务不可用时降级为本地统计摘要
	Report(ctx context.Context, year int) (*dto.AnalysisReportResponse, error)
}

type analysisService struct {
	stats  StatsService
	gen    TextGenerator
	logger *zap.Logger
}

// NewAnalysisService 创建 AnalysisService 实例
func NewAnalysisService(stats StatsService, gen TextGenerator, logger *zap.Logger) AnalysisService {
	return &analysisService{stats: stats, gen: gen, logger: logger}
}

func (s *analysisService) Report(ctx context.Context, year int) (*dto.AnalysisReportResponse, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	overview, err := s.stats.Overview(ctx)
	if err != nil {
		return nil, err
	}
	trend, err := s.stats.EnrollmentTrend(ctx, year)
	if err != nil {
		return nil, err
	}

	resp := &dto.AnalysisReportResponse{
		Year:      year,
		CreatedAt: time.Now().Format(time.DateTime),
	}

	if s.gen != nil && s.gen.Enabled() {
		text, err := s.gen.Complete(ctx, analysisSystemPrompt, buildAnalysisPrompt(year, overview, trend))
		if err == nil {
			resp.Report = text
			resp.Generated = true
			return resp, nil
		}
		s.logger.Warn("生成分析报告失败，降级为本地摘要", zap.Error(err))
	}

	resp.Report = localSummary(year, overview)
	return resp, nil
}

// buildAnalysisPrompt 把统计数据拼成生成服务的输入
func buildAnalysisPrompt(year int, o *dto.OverviewResponse, t *dto.EnrollmentTrendResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d 年招生统计：\n", year)
	fmt.Fprintf(&sb, "学生总数 %d，已报到 %d，待报到 %d，未报到 %d，报到率 %.2f%%。\n",
		o.TotalStudents, o.ReportedCount, o.PendingCount, o.UnreportedCount, o.ReportRate)
	fmt.Fprintf(&sb, "班级 %d 个，教师 %d 人。\n", o.TotalClasses, o.TotalTeachers)

	if len(o.ProvinceTop) > 0 {
		sb.WriteString("生源省份分布：")
		for i, p := range o.ProvinceTop {
			if i > 0 {
				sb.WriteString("、")
			}
			fmt.Fprintf(&sb, "%s %d 人", p.Name, p.Count)
		}
		sb.WriteString("。\n")
	}
	if len(o.MajorDistribution) > 0 {
		sb.WriteString("专业分布：")
		for i, m := range o.MajorDistribution {
			if i > 0 {
				sb.WriteString("、")
			}
			fmt.Fprintf(&sb, "%s %d 人", m.Name, m.Count)
		}
		sb.WriteString("。\n")
	}
	if len(t.Points) > 0 {
		fmt.Fprintf(&sb, "报到趋势（按日）：")
		for i, p := range t.Points {
			if i > 0 {
				sb.WriteString("，")
			}
			fmt.Fprintf(&sb, "%s %d 人", p.Date, p.Count)
		}
		sb.WriteString("。\n")
	}
	return sb.String()
}

// localSummary 本地降级摘要，仅陈述关键数字
func localSummary(year int, o *dto.OverviewResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d 年新生报到情况：共 %d 名学生，已报到 %d 人，待报到 %d 人，未报到 %d 人，报到率 %.2f%%。",
		year, o.TotalStudents, o.ReportedCount, o.PendingCount, o.UnreportedCount, o.ReportRate)
	if o.UnreportedCount > 0 {
		fmt.Fprintf(&sb, "仍有 %d 名学生未完成报到，建议及时跟进。", o.UnreportedCount)
	}
	if len(o.ProvinceTop) > 0 {
		fmt.Fprintf(&sb, "生源最多的省份为%s（%d 人）。", o.ProvinceTop[0].Name, o.ProvinceTop[0].Count)
	}
	return sb.String()
}
