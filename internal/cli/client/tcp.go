package client

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// TCPClient 通过 TCP 网关发送命令文本并收集响应
type TCPClient struct {
	Addr    string
	Timeout time.Duration
}

func NewTCPClient(addr string, timeout time.Duration) *TCPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TCPClient{Addr: addr, Timeout: timeout}
}

// Exchange 写入全部命令后半关闭写端，读取响应直到服务端关闭连接
func (c *TCPClient) Exchange(ctx context.Context, payload []byte) ([]byte, error) {
	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.Timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(payload); err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err != nil {
			return nil, err
		}
	}

	out, err := io.ReadAll(conn)
	if err != nil && !errors.Is(err, io.EOF) {
		return out, err
	}
	return out, nil
}
