package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taoyao-code/record-server/internal/health"
	"github.com/taoyao-code/record-server/internal/recordstore"
	"github.com/taoyao-code/record-server/internal/session"
)

// APIError 服务端返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// HTTPClient 只读查询 API 客户端
type HTTPClient struct {
	base string
	hc   *http.Client
}

func NewHTTPClient(base string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{base: strings.TrimRight(base, "/"), hc: &http.Client{Timeout: timeout}}
}

// RecordPage 分页记录
type RecordPage struct {
	Records []recordstore.Record `json:"records" yaml:"records"`
	Total   int                  `json:"total" yaml:"total"`
	Limit   int                  `json:"limit" yaml:"limit"`
	Offset  int                  `json:"offset" yaml:"offset"`
}

// SessionList 在线连接
type SessionList struct {
	Sessions []session.Info `json:"sessions" yaml:"sessions"`
	Online   int            `json:"online" yaml:"online"`
}

func (c *HTTPClient) ListRecords(ctx context.Context, limit, offset int) (*RecordPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var page RecordPage
	if err := c.get(ctx, "/api/records", q, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, name string) (*recordstore.Record, error) {
	var rec recordstore.Record
	if err := c.get(ctx, "/api/records/"+url.PathEscape(name), nil, &rec, http.StatusOK); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context) (*SessionList, error) {
	var list SessionList
	if err := c.get(ctx, "/api/sessions", nil, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// Health 不健康时服务端返回 503，报告仍然有效
func (c *HTTPClient) Health(ctx context.Context) (*health.HealthReport, error) {
	var report health.HealthReport
	if err := c.get(ctx, "/health", nil, &report, http.StatusOK, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values, v any, accept ...int) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, code := range accept {
		if resp.StatusCode == code {
			return json.NewDecoder(resp.Body).Decode(v)
		}
	}
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}
