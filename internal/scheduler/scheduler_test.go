package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/dto"
)

type fakeSweeper struct {
	calls  int32
	err    error
	result *dto.SweepResultResponse
}

func (f *fakeSweeper) Sweep(_ context.Context) (*dto.SweepResultResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestScheduler_RunSweep(t *testing.T) {
	sweeper := &fakeSweeper{result: &dto.SweepResultResponse{Expired: 3, Year: 2026}}
	s := New(time.Hour, sweeper, zap.NewNop())

	s.runSweep()
	if got := atomic.LoadInt32(&sweeper.calls); got != 1 {
		t.Errorf("期望执行 1 次清扫，实际=%d", got)
	}
}

func TestScheduler_RunSweep_ErrorDoesNotPanic(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("数据库不可用")}
	s := New(time.Hour, sweeper, zap.NewNop())

	s.runSweep()
	if got := atomic.LoadInt32(&sweeper.calls); got != 1 {
		t.Errorf("失败也应只调用 1 次，实际=%d", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	sweeper := &fakeSweeper{result: &dto.SweepResultResponse{}}
	s := New(time.Hour, sweeper, zap.NewNop())

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop 应在无任务在跑时立刻返回")
	}
}
