// Package scheduler 承载后台定时任务，目前只有报到截止清扫一项。
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
)

// Sweeper 报到截止清扫任务的业务入口
type Sweeper interface {
	Sweep(ctx context.Context) (*dto.SweepResultResponse, error)
}

// Scheduler 定时任务调度器
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
}

// New 创建调度器并注册报到截止清扫任务
func New(interval time.Duration, sweeper Sweeper, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.runSweep))
	return s
}

// Start 启动调度循环（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务调度器已启动")
}

// Stop 停止调度并等待在跑任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("定时任务调度器已停止")
}

// runSweep 执行一次报到截止清扫；任务幂等，重复触发无副作用
func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("报到截止清扫失败", zap.Error(err))
		return
	}
	if result.Expired > 0 {
		s.logger.Info("报到截止清扫完成",
			zap.Int("expired", result.Expired),
			zap.Int("year", result.Year),
		)
	}
}
