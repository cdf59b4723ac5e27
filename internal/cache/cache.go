package cache

import (
	"sync"
	"time"
)

// Entry 带刷新时间戳的共享快照
// 写者只有刷新任务一个，锁只在指针交换期间持有，从不跨 I/O
type Entry[T any] struct {
	mu        sync.RWMutex
	value     T
	updatedAt time.Time
}

func NewEntry[T any](initial T) *Entry[T] {
	return &Entry[T]{
		value:     initial,
		updatedAt: time.Now(),
	}
}

// Publish 原子替换快照并刷新时间戳
func (e *Entry[T]) Publish(value T) {
	e.mu.Lock()
	e.value = value
	e.updatedAt = time.Now()
	e.mu.Unlock()
}

// Snapshot 返回当前快照与距上次成功刷新的时长
// age 只作参考，缓存本身不做最大陈旧度限制
func (e *Entry[T]) Snapshot() (T, time.Duration) {
	e.mu.RLock()
	value := e.value
	age := time.Since(e.updatedAt)
	e.mu.RUnlock()
	return value, age
}
