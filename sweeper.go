package jail_bot

import (
	"context"
	"time"
)

// RunSweeper 周期性释放到期的关押，直到 ctx 取消
// 每次扫描结束后才开始计时，扫描不会重叠。
func (e *JailEngine) RunSweeper(ctx context.Context) error {
	interval := e.config.SweepInterval
	e.logger.Info("sweeper started", "interval", interval.String())

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sweeper stopped")
			return nil
		case <-timer.C:
		}
		e.sweepOnce(ctx)
		timer.Reset(interval)
	}
}

// sweepOnce 汇总日志由 ExpiryService 输出，这里只记整体失败
func (e *JailEngine) sweepOnce(ctx context.Context) {
	if res, err := e.Expiry.Sweep(ctx, e.now()); err != nil && ctx.Err() == nil {
		e.logger.Error("sweep failed", "run_id", res.RunID, "error", err)
	}
}

func (e *JailEngine) now() time.Time {
	if e.config.Now != nil {
		return e.config.Now().UTC()
	}
	return time.Now().UTC()
}
