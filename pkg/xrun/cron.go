package xrun

import (
	"context"

	"github.com/robfig/cron/v3"
)

// CronTicker 返回一个 ServiceFunc，按 cron 表达式 spec 周期性调用 fn，
// 直到 ctx 被取消。spec 解析失败会立即返回错误，不会启动任何调度。
//
// 用于驱动内存适配器的后台 TTL 清扫：相较固定间隔的 time.Ticker，cron
// 表达式可以把清扫安排在低峰时段（如 "0 3 * * *"）。
func CronTicker(spec string, fn func(ctx context.Context) error) (ServiceFunc, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		c := cron.New()
		id, err := c.AddFunc(spec, func() { _ = fn(ctx) })
		if err != nil {
			return err
		}
		defer c.Remove(id)

		c.Start()
		defer c.Stop()

		<-ctx.Done()
		return ctx.Err()
	}, nil
}
