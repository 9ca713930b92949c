package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/session"
	redisstorage "github.com/taoyao-code/record-server/internal/storage/redis"
)

// NewSessionManager 构造连接会话登记
// Redis 客户端可用时使用 Redis 实现（多实例共享在线视图），否则使用内存实现
func NewSessionManager(
	cfg cfgpkg.SessionConfig,
	redisClient *redisstorage.Client,
	serverID string,
	logger *zap.Logger,
) session.SessionManager {
	if redisClient != nil && redisClient.Client != nil {
		mgr := session.NewRedisManager(redisClient.Client, serverID, cfg.Timeout)
		mgr.SetBreaker(redisClient.Breaker())
		mgr.SetLogger(logger)
		logger.Info("using redis session manager",
			zap.String("server_id", mgr.ServerID()),
			zap.Duration("timeout", cfg.Timeout))
		return mgr
	}
	logger.Info("using memory session manager", zap.Duration("timeout", cfg.Timeout))
	return session.New(cfg.Timeout)
}
