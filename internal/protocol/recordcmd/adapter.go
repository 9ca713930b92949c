package recordcmd

import "errors"

// Adapter 将连接字节流桥接到 Engine：写入命令，遇到背压时先把响应送出再重试
type Adapter struct {
	engine *Engine
	sink   func([]byte) error
	buf    []byte
}

// NewAdapter 创建适配器；sink 接收响应字节（需自行复制）
func NewAdapter(engine *Engine, sink func([]byte) error, readSize int) *Adapter {
	if readSize <= 0 {
		readSize = 4096
	}
	return &Adapter{engine: engine, sink: sink, buf: make([]byte, readSize)}
}

// Engine 返回底层引擎
func (a *Adapter) Engine() *Engine { return a.engine }

// ProcessBytes 处理上行字节流，并把可用响应全部送出
func (a *Adapter) ProcessBytes(p []byte) error {
	for len(p) > 0 {
		n, err := a.engine.Write(p)
		p = p[n:]
		if err != nil {
			if !errors.Is(err, ErrResponsePending) {
				return err
			}
			if err := a.Flush(); err != nil {
				return err
			}
		}
	}
	return a.Flush()
}

// Flush 读空引擎中当前可产生的全部响应
func (a *Adapter) Flush() error {
	for {
		n, err := a.engine.Read(a.buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if a.sink == nil {
			continue
		}
		if err := a.sink(a.buf[:n]); err != nil {
			return err
		}
	}
}
