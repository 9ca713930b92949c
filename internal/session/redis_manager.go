package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redisstore "github.com/taoyao-code/record-server/internal/storage/redis"
)

// RedisManager Redis版本的会话登记，多实例共享在线视图
type RedisManager struct {
	client   *redis.Client
	serverID string        // 当前服务器实例ID
	timeout  time.Duration // 活动超时时间
	breaker  *redisstore.Breaker
	logger   *zap.Logger
	opTO     time.Duration
}

// Redis Key设计
const (
	// session:conn:{serverID}:{connID} -> Info JSON
	keyConnPrefix = "session:conn:"

	// session:server:{serverID}:conns -> Set[connID]
	keyServerConnsPrefix = "session:server:"
)

// NewRedisManager 创建Redis会话管理器；serverID 为空时生成 uuid
func NewRedisManager(client *redis.Client, serverID string, timeout time.Duration) *RedisManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if serverID == "" {
		serverID = uuid.New().String()
	}
	return &RedisManager{
		client:   client,
		serverID: serverID,
		timeout:  timeout,
		logger:   zap.NewNop(),
		opTO:     2 * time.Second,
	}
}

// SetBreaker 设置熔断器，熔断期间登记操作直接跳过
func (m *RedisManager) SetBreaker(b *redisstore.Breaker) { m.breaker = b }

// SetLogger 设置日志器
func (m *RedisManager) SetLogger(l *zap.Logger) {
	if l != nil {
		m.logger = l
	}
}

// ServerID 当前实例ID
func (m *RedisManager) ServerID() string { return m.serverID }

// OnOpen 登记新连接
func (m *RedisManager) OnOpen(id, remote string, t time.Time) {
	info := &Info{ID: id, Remote: remote, ServerID: m.serverID, OpenedAt: t, LastSeen: t}
	m.guard("open", func(ctx context.Context) error {
		payload, err := json.Marshal(info)
		if err != nil {
			return err
		}
		pipe := m.client.TxPipeline()
		pipe.Set(ctx, m.connKey(id), payload, m.timeout*2)
		pipe.SAdd(ctx, m.serverConnsKey(), id)
		_, err = pipe.Exec(ctx)
		return err
	})
}

// OnActivity 刷新最近活动时间
func (m *RedisManager) OnActivity(id string, t time.Time) {
	m.guard("activity", func(ctx context.Context) error {
		info, err := m.getInfo(ctx, m.connKey(id))
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		info.LastSeen = t
		return m.setInfo(ctx, info)
	})
}

// OnClosed 注销连接
func (m *RedisManager) OnClosed(id string) {
	m.guard("close", func(ctx context.Context) error {
		pipe := m.client.TxPipeline()
		pipe.Del(ctx, m.connKey(id))
		pipe.SRem(ctx, m.serverConnsKey(), id)
		_, err := pipe.Exec(ctx)
		return err
	})
}

// IsOnline 判断本实例的连接是否在线
func (m *RedisManager) IsOnline(id string, now time.Time) bool {
	var online bool
	m.guard("is_online", func(ctx context.Context) error {
		info, err := m.getInfo(ctx, m.connKey(id))
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		online = now.Sub(info.LastSeen) <= m.timeout
		return nil
	})
	return online
}

// OnlineCount 所有实例的在线连接数
func (m *RedisManager) OnlineCount(now time.Time) int {
	return len(m.List(now))
}

// List 所有实例的在线连接
func (m *RedisManager) List(now time.Time) []Info {
	var out []Info
	m.guard("list", func(ctx context.Context) error {
		var cursor uint64
		for {
			keys, next, err := m.client.Scan(ctx, cursor, keyConnPrefix+"*", 100).Result()
			if err != nil {
				return err
			}
			for _, key := range keys {
				info, err := m.getInfo(ctx, key)
				if err != nil {
					continue
				}
				if now.Sub(info.LastSeen) <= m.timeout {
					out = append(out, *info)
				}
			}
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	})
	sortInfos(out)
	return out
}

// Cleanup 清理本实例的所有会话（优雅关闭时调用）
func (m *RedisManager) Cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.opTO)
	defer cancel()

	ids, err := m.client.SMembers(ctx, m.serverConnsKey()).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, m.connKey(id))
	}
	keys = append(keys, m.serverConnsKey())
	return m.client.Del(ctx, keys...).Err()
}

// --- 辅助方法 ---

func (m *RedisManager) guard(op string, fn func(ctx context.Context) error) {
	run := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), m.opTO)
		defer cancel()
		return fn(ctx)
	}
	var err error
	if m.breaker != nil {
		err = m.breaker.Call(run)
	} else {
		err = run()
	}
	if err != nil {
		m.logger.Warn("session registry redis op failed", zap.String("op", op), zap.Error(err))
	}
}

func (m *RedisManager) getInfo(ctx context.Context, key string) (*Info, error) {
	val, err := m.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(val, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (m *RedisManager) setInfo(ctx context.Context, info *Info) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	// 过期时间为活动超时的2倍
	return m.client.Set(ctx, m.connKey(info.ID), payload, m.timeout*2).Err()
}

func (m *RedisManager) connKey(id string) string {
	return keyConnPrefix + m.serverID + ":" + id
}

func (m *RedisManager) serverConnsKey() string {
	return fmt.Sprintf("%s%s:conns", keyServerConnsPrefix, m.serverID)
}
