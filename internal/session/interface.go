package session

import "time"

// Info 单个客户端连接的会话信息
type Info struct {
	ID       string    `json:"id" yaml:"id"`
	Remote   string    `json:"remote" yaml:"remote"`
	ServerID string    `json:"server_id,omitempty" yaml:"server_id,omitempty"`
	OpenedAt time.Time `json:"opened_at" yaml:"opened_at"`
	LastSeen time.Time `json:"last_seen" yaml:"last_seen"`
}

// SessionManager 连接会话登记，支持内存和Redis两种实现
type SessionManager interface {
	// OnOpen 登记新连接
	OnOpen(id, remote string, t time.Time)

	// OnActivity 刷新连接最近活动时间
	OnActivity(id string, t time.Time)

	// OnClosed 注销连接
	OnClosed(id string)

	// IsOnline 连接已登记且未超时
	IsOnline(id string, now time.Time) bool

	// OnlineCount 当前在线连接数
	OnlineCount(now time.Time) int

	// List 在线连接列表（按打开时间升序）
	List(now time.Time) []Info
}
