package cache

import (
	"context"
	"time"

	"github.com/Fazich/ore-hq-server/pkg/logger"
)

// Refresher 单个缓存的后台刷新循环
// 取值成功就发布并睡满间隔；失败只记日志，短暂退避后重试同一轮，
// 已发布的快照保持可见，永远不会被失败清掉
type Refresher[T any] struct {
	name       string
	entry      *Entry[T]
	fetch      func(context.Context) (T, error)
	interval   time.Duration
	retryDelay time.Duration
	clock      Clock
}

func NewRefresher[T any](name string, entry *Entry[T], interval, retryDelay time.Duration, fetch func(context.Context) (T, error)) *Refresher[T] {
	return &Refresher[T]{
		name:       name,
		entry:      entry,
		fetch:      fetch,
		interval:   interval,
		retryDelay: retryDelay,
		clock:      realClock{},
	}
}

// WithClock 替换时钟，测试用
func (r *Refresher[T]) WithClock(clock Clock) *Refresher[T] {
	r.clock = clock
	return r
}

// Run 一直运行到 ctx 结束；生产环境传 context.Background()，
// 刷新任务的生命周期就是进程生命周期
func (r *Refresher[T]) Run(ctx context.Context) {
	for {
		value, err := r.fetch(ctx)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"cache": r.name,
				"retry": r.retryDelay.String(),
			}).Error("缓存刷新失败，稍后重试: ", err)

			if !r.clock.Sleep(ctx, r.retryDelay) {
				return
			}
			continue
		}

		r.entry.Publish(value)
		logger.WithFields(map[string]interface{}{
			"cache": r.name,
		}).Debug("缓存已刷新")

		if !r.clock.Sleep(ctx, r.interval) {
			return
		}
	}
}
