package cache

import (
	"context"
	"time"
)

// Clock 刷新循环用的时钟，测试时注入假实现
type Clock interface {
	// Sleep 阻塞 d 时长，ctx 先结束时返回 false
	Sleep(ctx context.Context, d time.Duration) bool
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
