package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/protocol/recordcmd"
	"github.com/taoyao-code/record-server/internal/recordstore"
	"github.com/taoyao-code/record-server/internal/session"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// RecordReader 记录表只读视图
type RecordReader interface {
	Find(name string) (recordstore.Record, bool)
	List() []recordstore.Record
	Len() int
}

// ReadOnlyHandler 只读API处理器
type ReadOnlyHandler struct {
	store  RecordReader
	sess   session.SessionManager
	logger *zap.Logger
}

// NewReadOnlyHandler 创建只读API处理器；sess 可为 nil
func NewReadOnlyHandler(store RecordReader, sess session.SessionManager, logger *zap.Logger) *ReadOnlyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadOnlyHandler{store: store, sess: sess, logger: logger}
}

// ListRecords 按插入顺序分页查询记录
// @Summary 查询记录列表
// @Param limit query int false "每页数量(默认100)"
// @Param offset query int false "偏移量(默认0)"
// @Router /api/records [get]
func (h *ReadOnlyHandler) ListRecords(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultPageSize)
	if !ok || limit <= 0 || limit > maxPageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	all := h.store.List()
	total := len(all)
	page := []recordstore.Record{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = all[offset:end]
	}
	c.JSON(http.StatusOK, gin.H{
		"records": page,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetRecord 按名称查询第一条匹配记录
// @Summary 按名称查询记录
// @Param name path string true "名称"
// @Router /api/records/{name} [get]
func (h *ReadOnlyHandler) GetRecord(c *gin.Context) {
	name := c.Param("name")
	rec, ok := h.store.Find(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": name + " " + trimNewline(recordcmd.NotFoundSuffix)})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListSessions 在线连接列表
// @Summary 查询在线连接
// @Router /api/sessions [get]
func (h *ReadOnlyHandler) ListSessions(c *gin.Context) {
	if h.sess == nil {
		c.JSON(http.StatusOK, gin.H{"sessions": []session.Info{}, "online": 0})
		return
	}
	list := h.sess.List(time.Now())
	if list == nil {
		list = []session.Info{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list, "online": len(list)})
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}
