package recordcmd

// ResponseBuffer 定长响应缓冲区：读游标 + 逻辑长度，读尽后复位
type ResponseBuffer struct {
	buf      []byte
	n        int
	cursor   int
	overflow bool
}

// NewResponseBuffer 创建响应缓冲区
func NewResponseBuffer(capacity int) *ResponseBuffer {
	if capacity <= 0 {
		capacity = 2 * DefaultCommandCapacity
	}
	return &ResponseBuffer{buf: make([]byte, capacity)}
}

// AppendText 追加响应文本。超出容量时写入能容纳的部分，标记溢出并返回 ErrBufferOverflow。
func (r *ResponseBuffer) AppendText(s string) error {
	free := len(r.buf) - r.n
	if len(s) > free {
		r.n += copy(r.buf[r.n:], s[:free])
		r.overflow = true
		return ErrBufferOverflow
	}
	r.n += copy(r.buf[r.n:], s)
	return nil
}

// Drain 从读游标处读出至多 len(p) 字节；读尽后游标与长度一并归零
func (r *ResponseBuffer) Drain(p []byte) int {
	k := copy(p, r.buf[r.cursor:r.n])
	r.cursor += k
	if r.cursor >= r.n {
		r.reset()
	}
	return k
}

// Pending 是否存在未读响应
func (r *ResponseBuffer) Pending() bool { return r.cursor < r.n }

// Len 未读字节数
func (r *ResponseBuffer) Len() int { return r.n - r.cursor }

func (r *ResponseBuffer) Cap() int { return len(r.buf) }

// Overflowed 当前这批响应是否发生过截断
func (r *ResponseBuffer) Overflowed() bool { return r.overflow }

func (r *ResponseBuffer) reset() {
	r.n, r.cursor = 0, 0
	r.overflow = false
}
