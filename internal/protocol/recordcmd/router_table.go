package recordcmd

import (
	"sync"

	"github.com/taoyao-code/record-server/internal/recordstore"
)

// Handler 命令处理器：执行命令并把输出追加到响应缓冲区
type Handler func(cmd *Command, out *ResponseBuffer) error

// Table 路由表（verb -> handler）
type Table struct {
	mu       sync.RWMutex
	handlers map[Verb]Handler
}

func NewTable() *Table { return &Table{handlers: make(map[Verb]Handler)} }

func (t *Table) Register(v Verb, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[v] = h
}

func (t *Table) Route(cmd *Command, out *ResponseBuffer) error {
	t.mu.RLock()
	h := t.handlers[cmd.Verb]
	t.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h(cmd, out)
}

// RecordStore 命令分发所需的记录表能力
type RecordStore interface {
	Add(number, name string)
	Find(name string) (recordstore.Record, bool)
	Remove(name string) bool
}

// RegisterRecordHandlers 注册 a/f/r 三个处理器
func RegisterRecordHandlers(t *Table, store RecordStore) {
	t.Register(VerbAdd, func(cmd *Command, _ *ResponseBuffer) error {
		store.Add(cmd.Number, cmd.Name)
		return nil
	})
	t.Register(VerbFind, func(cmd *Command, out *ResponseBuffer) error {
		rec, ok := store.Find(cmd.Name)
		if !ok {
			return out.AppendText(notFound(cmd.Name))
		}
		return out.AppendText(rec.Name + " " + rec.Number + "\n")
	})
	t.Register(VerbRemove, func(cmd *Command, out *ResponseBuffer) error {
		if store.Remove(cmd.Name) {
			// 删除成功与 add 一致：无输出
			return nil
		}
		return out.AppendText(notFound(cmd.Name))
	})
}

func notFound(name string) string { return name + " " + NotFoundSuffix }
