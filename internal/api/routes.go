package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/session"
)

// RegisterReadOnlyRoutes 注册只读查询路由
func RegisterReadOnlyRoutes(r gin.IRouter, store RecordReader, sess session.SessionManager, logger *zap.Logger) {
	if r == nil || store == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewReadOnlyHandler(store, sess, logger)

	api := r.Group("/api")
	api.GET("/records", handler.ListRecords)
	api.GET("/records/:name", handler.GetRecord)
	api.GET("/sessions", handler.ListSessions)

	logger.Info("readonly routes registered", zap.Int("endpoints", 3))
}
