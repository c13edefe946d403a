// 包 ingest：调度每日的批量区域分配任务，运行在服务进程内的后台协程
package ingest

import (
	"context"
	"time"

	"medzone/internal/logger"
)

// nextDailyAt：计算下一次指定小时的时间点（当天已过则顺延到次日）
// 约束：基于 now 所在时区与整点 hour
func nextDailyAt(now time.Time, hour int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// StartDaily：每天在 loc 时区的 hour 点执行一次 job
// 背景：新注册或修改地址的医生在夜间统一分配区域；错误由日志记录，任务继续调度
// 约束：hour 越界时回退 3 点；上一次未结束时不会并发启动下一次；ctx 取消后停止
func StartDaily(ctx context.Context, loc *time.Location, hour int, job func(context.Context) error) {
	l := logger.L()
	if loc == nil {
		loc = time.Local
	}
	if hour < 0 || hour > 23 {
		hour = 3
	}
	go func() {
		for {
			next := nextDailyAt(time.Now().In(loc), hour)
			l.Info("scheduler_next", "at", next)
			t := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			l.Info("scheduled_job_start")
			if err := job(ctx); err != nil {
				l.Error("scheduled_job_error", "err", err)
			} else {
				l.Info("scheduled_job_done")
			}
		}
	}()
}
