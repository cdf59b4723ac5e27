package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 记录每次休眠时长，休眠满 max 次后让循环退出
type fakeClock struct {
	sleeps []time.Duration
	max    int
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) bool {
	c.sleeps = append(c.sleeps, d)
	return len(c.sleeps) < c.max
}

func TestRefresherPublishesOnSuccess(t *testing.T) {
	entry := NewEntry("")
	clock := &fakeClock{max: 1}

	fetch := func(ctx context.Context) (string, error) {
		return "fresh", nil
	}

	NewRefresher("test", entry, 5*time.Second, 2*time.Second, fetch).
		WithClock(clock).
		Run(context.Background())

	value, _ := entry.Snapshot()
	assert.Equal(t, "fresh", value)
	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 5*time.Second, clock.sleeps[0])
}

func TestRefresherKeepsLastValueOnFailure(t *testing.T) {
	entry := NewEntry("")
	clock := &fakeClock{max: 3}

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		switch calls {
		case 1:
			return "first", nil
		case 2:
			return "", errors.New("rpc unavailable")
		default:
			return "third", nil
		}
	}

	NewRefresher("test", entry, 5*time.Second, 2*time.Second, fetch).
		WithClock(clock).
		Run(context.Background())

	value, _ := entry.Snapshot()
	assert.Equal(t, "third", value)
	// 成功睡满间隔，失败只做短退避
	assert.Equal(t, []time.Duration{5 * time.Second, 2 * time.Second, 5 * time.Second}, clock.sleeps)
}

func TestRefresherFailureDoesNotClearSnapshot(t *testing.T) {
	entry := NewEntry("")
	clock := &fakeClock{max: 2}

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "published", nil
		}
		return "", errors.New("rpc unavailable")
	}

	NewRefresher("test", entry, 5*time.Second, 2*time.Second, fetch).
		WithClock(clock).
		Run(context.Background())

	value, _ := entry.Snapshot()
	assert.Equal(t, "published", value)
}

func TestRealClockSleepStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan bool, 1)
	go func() {
		done <- realClock{}.Sleep(ctx, time.Hour)
	}()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("sleep did not return after context cancel")
	}
}

func TestRefresherStopsWhenContextCancelled(t *testing.T) {
	entry := NewEntry("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(ctx context.Context) (string, error) {
		return "", errors.New("rpc unavailable")
	}

	done := make(chan struct{})
	go func() {
		NewRefresher("test", entry, time.Hour, time.Hour, fetch).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after context cancel")
	}
}
