package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/taoyao-code/record-server/internal/storage/redis"
)

// 使用测试用Redis客户端（需要本地 Redis 实例，不可用时跳过）
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping test")
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisManager_Basic(t *testing.T) {
	client := setupTestRedis(t)
	mgr := NewRedisManager(client, "test-server-1", 5*time.Minute)

	now := time.Now()
	mgr.OnOpen("1", "127.0.0.1:4000", now)

	assert.True(t, mgr.IsOnline("1", now.Add(1*time.Minute)))
	assert.False(t, mgr.IsOnline("1", now.Add(10*time.Minute)))
	assert.False(t, mgr.IsOnline("2", now))

	mgr.OnActivity("1", now.Add(8*time.Minute))
	assert.True(t, mgr.IsOnline("1", now.Add(10*time.Minute)))

	mgr.OnClosed("1")
	assert.False(t, mgr.IsOnline("1", now))
}

func TestRedisManager_MultiInstance(t *testing.T) {
	client := setupTestRedis(t)
	a := NewRedisManager(client, "server-a", 5*time.Minute)
	b := NewRedisManager(client, "server-b", 5*time.Minute)

	now := time.Now()
	a.OnOpen("1", "r1", now)
	b.OnOpen("1", "r2", now.Add(time.Second))
	a.OnOpen("2", "r3", now.Add(-10*time.Minute)) // 已过期

	t.Run("在线数跨实例统计", func(t *testing.T) {
		assert.Equal(t, 2, a.OnlineCount(now.Add(2*time.Second)))
	})

	t.Run("列表包含实例ID", func(t *testing.T) {
		list := b.List(now.Add(2 * time.Second))
		require.Len(t, list, 2)
		assert.Equal(t, "server-a", list[0].ServerID)
		assert.Equal(t, "server-b", list[1].ServerID)
	})

	t.Run("Cleanup只清理本实例", func(t *testing.T) {
		require.NoError(t, a.Cleanup())
		list := b.List(now.Add(2 * time.Second))
		require.Len(t, list, 1)
		assert.Equal(t, "server-b", list[0].ServerID)
	})
}

func TestRedisManager_BreakerOpenSkipsRedis(t *testing.T) {
	// 指向不存在的地址，不依赖真实 Redis
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	br := redisstore.NewBreaker(1, time.Minute)
	mgr := NewRedisManager(client, "s", time.Minute)
	mgr.SetBreaker(br)

	now := time.Now()
	mgr.OnOpen("1", "r", now)
	assert.Equal(t, redisstore.BreakerOpen, br.State())

	err := br.Call(func() error { return errors.New("unreachable") })
	assert.ErrorIs(t, err, redisstore.ErrBreakerOpen)
	assert.False(t, mgr.IsOnline("1", now))
	assert.Empty(t, mgr.List(now))
}

func TestNewRedisManager_GeneratesServerID(t *testing.T) {
	mgr := NewRedisManager(nil, "", 0)
	assert.NotEmpty(t, mgr.ServerID())
	assert.Equal(t, 5*time.Minute, mgr.timeout)
}
