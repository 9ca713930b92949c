package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/record-server/internal/config"
)

func startServer(t *testing.T) *bootstrap.Server {
	t.Helper()
	t.Setenv("RECORD_HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("RECORD_TCP_ADDR", "127.0.0.1:0")
	cfg, err := cfgpkg.Load("../../../configs/example.yaml")
	require.NoError(t, err)
	cfg.Logging.File.Filename = ""

	s, err := bootstrap.Start(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func run(t *testing.T, s *bootstrap.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	base := []string{
		"--tcp", s.TCPAddr().String(),
		"--server", "http://" + s.HTTPAddr().String(),
		"--timeout", "2s",
	}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRecordctl_TCPCommands(t *testing.T) {
	s := startServer(t)

	out, err := run(t, s, "", "add", "12345", "Alice")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, s, "", "find", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice 12345\n", out)

	_, err = run(t, s, "", "send", "-", "")
	require.Error(t, err, "多余参数应被拒绝")

	out, err = run(t, s, "a 1 Bob;f Bob;r Carol;", "send")
	require.NoError(t, err)
	assert.Equal(t, "Bob 1\nCarol person not found\n", out)

	out, err = run(t, s, "", "rm", "Alice")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = run(t, s, "", "find", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice person not found\n", out)

	_, err = run(t, s, "", "add", "1", "bad;name")
	assert.Error(t, err)
}

func TestRecordctl_QueryCommands(t *testing.T) {
	s := startServer(t)
	s.Store().Add("12345", "Alice")
	s.Store().Add("7", "Bob")

	t.Run("list表格", func(t *testing.T) {
		out, err := run(t, s, "", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "Alice")
		assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Bob"))
	})

	t.Run("list JSON", func(t *testing.T) {
		out, err := run(t, s, "", "list", "-o", "json", "--limit", "1", "--offset", "1")
		require.NoError(t, err)
		var page struct {
			Records []struct{ Name string } `json:"records"`
			Total   int                     `json:"total"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		assert.Equal(t, 2, page.Total)
		require.Len(t, page.Records, 1)
		assert.Equal(t, "Bob", page.Records[0].Name)
	})

	t.Run("get YAML", func(t *testing.T) {
		out, err := run(t, s, "", "get", "Alice", "-o", "yaml")
		require.NoError(t, err)
		assert.Equal(t, "name: Alice\nnumber: \"12345\"\n", out)
	})

	t.Run("get不存在", func(t *testing.T) {
		_, err := run(t, s, "", "get", "Zed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Zed person not found")
	})

	t.Run("health", func(t *testing.T) {
		out, err := run(t, s, "", "health")
		require.NoError(t, err)
		assert.Contains(t, out, "healthy")
		assert.Contains(t, out, "record_store")
	})

	t.Run("sessions为空", func(t *testing.T) {
		out, err := run(t, s, "", "sessions")
		require.NoError(t, err)
		assert.Equal(t, "No sessions.\n", out)
	})

	t.Run("非法输出格式", func(t *testing.T) {
		_, err := run(t, s, "", "list", "-o", "xml")
		assert.Error(t, err)
	})
}
