package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gescall/dialer-console/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLockRedis(t *testing.T, connName string) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	adapter, err := redis.NewRedisAdapter(connName, "test:", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func TestGroupLocks_AcquiresAndReleasesLease(t *testing.T) {
	mr, adapter := setupLockRedis(t, "lock-acquire")
	locks := newGroupLocks(adapter, 2*time.Second, 5*time.Millisecond)

	unlock := locks.lock(context.Background(), "rotation:lock:1:305")
	assert.True(t, mr.Exists("test:rotation:lock:1:305"))

	unlock()
	assert.False(t, mr.Exists("test:rotation:lock:1:305"))
}

func TestGroupLocks_HeldLeaseFallsBackToLocalOnDeadline(t *testing.T) {
	mr, adapter := setupLockRedis(t, "lock-held")
	locks := newGroupLocks(adapter, 2*time.Second, 5*time.Millisecond)

	// Another instance holds the lease.
	require.NoError(t, mr.Set("test:rotation:lock:1:305", "1"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	unlock := locks.lock(ctx, "rotation:lock:1:305")
	unlock()

	// The foreign lease was never ours to delete.
	assert.True(t, mr.Exists("test:rotation:lock:1:305"))
}

func TestGroupLocks_NilRedisUsesLocalLockOnly(t *testing.T) {
	locks := newGroupLocks(nil, 2*time.Second, 5*time.Millisecond)

	unlock := locks.lock(context.Background(), "rotation:lock:1:305")
	unlock()

	// Re-acquire to prove the local mutex was released.
	unlock = locks.lock(context.Background(), "rotation:lock:1:305")
	unlock()
}

func TestGroupLocks_SerializesSameGroup(t *testing.T) {
	_, adapter := setupLockRedis(t, "lock-serial")
	locks := newGroupLocks(adapter, 2*time.Second, 5*time.Millisecond)

	var inCritical int
	done := make(chan struct{})

	unlock := locks.lock(context.Background(), "rotation:lock:1:305")
	inCritical = 1

	go func() {
		u := locks.lock(context.Background(), "rotation:lock:1:305")
		assert.Equal(t, 0, inCritical)
		u()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	inCritical = 0
	unlock()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never entered the critical section")
	}
}
