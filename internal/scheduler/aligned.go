package scheduler

import (
	"context"
	"time"

	"strata/internal/logger"
)

// AlignedScheduler 把任务对齐到周期收盘（UTC 整点网格）后以固定偏移执行，
// 用于在每根 K 线收盘后拉取数据并驱动一次评估。
type AlignedScheduler struct {
	Name           string
	AlignInterval  time.Duration
	Offset         time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewAlignedScheduler(ctx context.Context, alignInterval, offset time.Duration) *AlignedScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &AlignedScheduler{
		AlignInterval: alignInterval,
		Offset:        offset,
		ctx:           ctx,
		nowFn:         time.Now,
	}
}

// Start 阻塞运行，直到 ctx 取消。
func (s *AlignedScheduler) Start(task func()) {
	if s == nil || task == nil {
		return
	}
	if s.AlignInterval <= 0 {
		logger.Warnf("AlignedScheduler[%s]: invalid align_interval=%s, exit", s.Name, s.AlignInterval)
		return
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	if s.RunImmediately {
		task()
	}

	for {
		now := s.nowFn().UTC()
		nextClose := now.Truncate(s.AlignInterval).Add(s.AlignInterval)
		runAt := nextClose.Add(s.Offset)
		logger.Debugf("AlignedScheduler[%s]: 下次执行=%s (收盘=%s)",
			s.Name, runAt.Format(time.RFC3339), nextClose.Format(time.RFC3339))
		if !s.waitUntil(runAt) {
			return
		}
		task()
	}
}

func (s *AlignedScheduler) waitUntil(target time.Time) bool {
	wait := target.Sub(s.nowFn().UTC())
	if wait <= 0 {
		wait = time.Millisecond
	}
	timer := time.NewTimer(wait)
	select {
	case <-s.ctx.Done():
		timer.Stop()
		logger.Infof("AlignedScheduler[%s]: ctx done, exit", s.Name)
		return false
	case <-timer.C:
		return true
	}
}
