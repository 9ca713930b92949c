package session

import (
	"sort"
	"sync"
	"time"
)

// Manager 进程内会话登记
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Info
	timeout  time.Duration
}

func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Manager{sessions: make(map[string]*Info), timeout: timeout}
}

// OnOpen 登记新连接，重复登记将覆盖
func (m *Manager) OnOpen(id, remote string, t time.Time) {
	m.mu.Lock()
	m.sessions[id] = &Info{ID: id, Remote: remote, OpenedAt: t, LastSeen: t}
	m.mu.Unlock()
}

// OnActivity 刷新最近活动时间，未登记的连接忽略
func (m *Manager) OnActivity(id string, t time.Time) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeen = t
	}
	m.mu.Unlock()
}

// OnClosed 注销连接
func (m *Manager) OnClosed(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// IsOnline 判断连接是否在线
func (m *Manager) IsOnline(id string, now time.Time) bool {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(s.LastSeen) <= m.timeout
}

// OnlineCount 返回当前在线连接数量
func (m *Manager) OnlineCount(now time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if now.Sub(s.LastSeen) <= m.timeout {
			count++
		}
	}
	return count
}

// List 在线连接快照
func (m *Manager) List(now time.Time) []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		if now.Sub(s.LastSeen) <= m.timeout {
			out = append(out, *s)
		}
	}
	m.mu.RUnlock()
	sortInfos(out)
	return out
}

func sortInfos(in []Info) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].OpenedAt.Equal(in[j].OpenedAt) {
			return in[i].ID < in[j].ID
		}
		return in[i].OpenedAt.Before(in[j].OpenedAt)
	})
}
