package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name   string `json:"name" yaml:"name"`
	Number string `json:"number" yaml:"number"`
}

type records []record

func (r records) Headers() []string { return []string{"Name", "Number"} }

func (r records) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, rec := range r {
		rows = append(rows, []string{rec.Name, rec.Number})
	}
	return rows
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatTable, false},
		{"TABLE", FormatTable, false},
		{"json", FormatJSON, false},
		{" yml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPrinter(t *testing.T) {
	data := records{{"Alice", "12345"}, {"Bob", "7"}}

	t.Run("表格", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(data))
		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "NUMBER")
		assert.Contains(t, out, "Alice")
		assert.Contains(t, out, "12345")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON).Print(data))
		assert.JSONEq(t, `[{"name":"Alice","number":"12345"},{"name":"Bob","number":"7"}]`, buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML).Print(data))
		assert.Equal(t, "- name: Alice\n  number: \"12345\"\n- name: Bob\n  number: \"7\"\n", buf.String())
	})

	t.Run("非表格数据回退JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable).Print(map[string]int{"online": 1}))
		assert.JSONEq(t, `{"online":1}`, buf.String())
	})
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{{"status", "healthy"}, {"tcp", "ok"}}))
	out := buf.String()
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "tcp")
}

func TestTableData(t *testing.T) {
	td := NewTableData("ID", "Remote")
	assert.Empty(t, td.Rows())
	td.AddRow("1", "127.0.0.1:1")
	assert.Equal(t, [][]string{{"1", "127.0.0.1:1"}}, td.Rows())
}
