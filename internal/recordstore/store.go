package recordstore

import (
	"container/list"
	"sync"
)

// Record 记录：姓名 + 号码（均为独立持有的字符串副本）
type Record struct {
	Name   string `json:"name" yaml:"name"`
	Number string `json:"number" yaml:"number"`
}

// Store 内存记录表
// 约定：
// - 保持插入顺序，允许同名记录
// - Find/Remove 总是作用于当前顺序中第一条姓名完全相等（逐字节）的记录
type Store struct {
	mu    sync.RWMutex
	order *list.List                 // 全局插入顺序（元素值为 *Record）
	index map[string][]*list.Element // name -> 同名记录 FIFO（按插入顺序）
}

// New 创建空记录表
func New() *Store {
	return &Store{order: list.New(), index: make(map[string][]*list.Element)}
}

// Add 追加一条记录到末尾
func (s *Store) Add(number, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.order.PushBack(&Record{Name: name, Number: number})
	s.index[name] = append(s.index[name], el)
}

// Find 返回第一条同名记录
func (s *Store) Find(name string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	els := s.index[name]
	if len(els) == 0 {
		return Record{}, false
	}
	return *els[0].Value.(*Record), true
}

// Remove 删除第一条同名记录，返回是否删除
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := s.index[name]
	if len(els) == 0 {
		return false
	}
	s.order.Remove(els[0])
	if len(els) == 1 {
		delete(s.index, name)
	} else {
		els[0] = nil
		s.index[name] = els[1:]
	}
	return true
}

// Clear 释放全部记录（模块卸载时调用）
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.index = make(map[string][]*list.Element)
}

// Len 当前记录数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// List 按插入顺序返回记录快照
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Record))
	}
	return out
}
