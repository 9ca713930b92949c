package recordcmd

import "bytes"

// CommandBuffer 定长命令缓冲区：保存尚未被解析消费的写入字节
type CommandBuffer struct {
	buf []byte
	n   int
}

// NewCommandBuffer 创建命令缓冲区
func NewCommandBuffer(capacity int) *CommandBuffer {
	if capacity <= 0 {
		capacity = DefaultCommandCapacity
	}
	return &CommandBuffer{buf: make([]byte, capacity)}
}

// Append 追加一个字节，返回追加后是否已满。已满时不再接收。
func (b *CommandBuffer) Append(c byte) (full bool) {
	if b.n == len(b.buf) {
		return true
	}
	b.buf[b.n] = c
	b.n++
	return b.n == len(b.buf)
}

// Bytes 返回当前内容（与内部存储共享，调用方不得持有）
func (b *CommandBuffer) Bytes() []byte { return b.buf[:b.n] }

func (b *CommandBuffer) Len() int   { return b.n }
func (b *CommandBuffer) Cap() int   { return len(b.buf) }
func (b *CommandBuffer) Full() bool { return b.n == len(b.buf) }

// Reset 清空缓冲区
func (b *CommandBuffer) Reset() { b.n = 0 }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' }

// TrimLeadingWhitespace 去掉前导空格/制表符/换行，剩余内容左移
func (b *CommandBuffer) TrimLeadingWhitespace() {
	i := 0
	for i < b.n && isSpace(b.buf[i]) {
		i++
	}
	if i > 0 {
		b.shift(i)
	}
}

// DiscardThrough 丢弃到第一个 term（含）为止；不存在 term 时清空
func (b *CommandBuffer) DiscardThrough(term byte) {
	idx := bytes.IndexByte(b.buf[:b.n], term)
	if idx < 0 {
		b.n = 0
		return
	}
	b.shift(idx + 1)
}

func (b *CommandBuffer) shift(k int) {
	if k >= b.n {
		b.n = 0
		return
	}
	copy(b.buf, b.buf[k:b.n])
	b.n -= k
}
