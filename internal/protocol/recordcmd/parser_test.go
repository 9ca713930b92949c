package recordcmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(b *CommandBuffer, s string) {
	for i := 0; i < len(s); i++ {
		b.Append(s[i])
	}
}

func TestCommandBuffer_TrimAndDiscard(t *testing.T) {
	t.Run("去除前导空白", func(t *testing.T) {
		b := NewCommandBuffer(32)
		fill(b, " \t\n\nf X;")
		b.TrimLeadingWhitespace()
		assert.Equal(t, "f X;", string(b.Bytes()))
	})

	t.Run("回车不算空白", func(t *testing.T) {
		b := NewCommandBuffer(32)
		fill(b, "\r f X;")
		b.TrimLeadingWhitespace()
		assert.Equal(t, "\r f X;", string(b.Bytes()))
	})

	t.Run("丢弃至终止符", func(t *testing.T) {
		b := NewCommandBuffer(32)
		fill(b, "x y;a 1 B;")
		b.DiscardThrough(Terminator)
		assert.Equal(t, "a 1 B;", string(b.Bytes()))
	})

	t.Run("无终止符时整体丢弃", func(t *testing.T) {
		b := NewCommandBuffer(32)
		fill(b, "no terminator here")
		b.DiscardThrough(Terminator)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("写满后不再接收", func(t *testing.T) {
		b := NewCommandBuffer(3)
		assert.False(t, b.Append('a'))
		assert.False(t, b.Append('b'))
		assert.True(t, b.Append('c'))
		assert.True(t, b.Append('d'))
		assert.Equal(t, "abc", string(b.Bytes()))
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cap     int
		want    Command
		outcome Outcome
		rest    string
	}{
		{name: "add", input: "a 12345 Alice;", want: Command{Verb: VerbAdd, Number: "12345", Name: "Alice"}, outcome: OutcomeDispatch},
		{name: "find", input: "f Alice;f Bob;", want: Command{Verb: VerbFind, Name: "Alice"}, outcome: OutcomeDispatch, rest: "f Bob;"},
		{name: "remove", input: "r Bob;", want: Command{Verb: VerbRemove, Name: "Bob"}, outcome: OutcomeDispatch},
		{name: "name with spaces", input: "a 5 Mary Ann;", want: Command{Verb: VerbAdd, Number: "5", Name: "Mary Ann"}, outcome: OutcomeDispatch},
		{name: "leading whitespace", input: "\n\t  f X;", want: Command{Verb: VerbFind, Name: "X"}, outcome: OutcomeDispatch},
		{name: "empty name", input: "f ;", want: Command{Verb: VerbFind, Name: ""}, outcome: OutcomeDispatch},
		{name: "unknown verb", input: "x bogus;a 1 Bob;", outcome: OutcomeMalformed, rest: "a 1 Bob;"},
		{name: "missing space", input: "fBob;f A;", outcome: OutcomeMalformed, rest: "f A;"},
		{name: "add number spans terminator", input: "a 123;f X;", want: Command{Verb: VerbAdd, Number: "123;f", Name: "X"}, outcome: OutcomeDispatch},
		{name: "add number waits for space", input: "a 123;", outcome: OutcomePartial, rest: "a 123;"},
		{name: "add name waits for terminator", input: "a 1;2 Bob", outcome: OutcomePartial, rest: "a 1;2 Bob"},
		{name: "malformed without terminator", input: "zzz", outcome: OutcomeMalformed},
		{name: "partial", input: "a 55", outcome: OutcomePartial, rest: "a 55"},
		{name: "single byte discarded", input: "a", outcome: OutcomeMalformed},
		{name: "whitespace only", input: "  \n", outcome: OutcomePartial},
		{name: "full without terminator", input: "a 1 Bobby", cap: 9, outcome: OutcomeUnterminated},
		{name: "full without number space", input: "a 1234567", cap: 9, outcome: OutcomeUnterminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capacity := tt.cap
			if capacity == 0 {
				capacity = 64
			}
			b := NewCommandBuffer(capacity)
			fill(b, tt.input)

			cmd, outcome := Parse(b)
			require.Equal(t, tt.outcome, outcome)
			if outcome == OutcomeDispatch {
				assert.Equal(t, tt.want, cmd)
			}
			assert.Equal(t, tt.rest, string(b.Bytes()))
		})
	}
}

func TestParse_OperandsAreCopies(t *testing.T) {
	b := NewCommandBuffer(64)
	fill(b, "a 1 Ann;a 2 Bob;")
	cmd, outcome := Parse(b)
	require.Equal(t, OutcomeDispatch, outcome)

	// 覆盖缓冲区内容后，已解析的操作数不受影响
	fill(b, strings.Repeat("z", 20))
	assert.Equal(t, "Ann", cmd.Name)
	assert.Equal(t, "1", cmd.Number)
}

func TestResponseBuffer(t *testing.T) {
	t.Run("分段读取后复位", func(t *testing.T) {
		r := NewResponseBuffer(16)
		require.NoError(t, r.AppendText("Al 2\n"))
		assert.True(t, r.Pending())

		p := make([]byte, 2)
		assert.Equal(t, 2, r.Drain(p))
		assert.Equal(t, "Al", string(p))
		assert.Equal(t, 3, r.Len())

		p = make([]byte, 8)
		n := r.Drain(p)
		assert.Equal(t, " 2\n", string(p[:n]))
		assert.False(t, r.Pending())
		assert.Equal(t, 0, r.Drain(p))
	})

	t.Run("超出容量截断并标记", func(t *testing.T) {
		r := NewResponseBuffer(8)
		require.NoError(t, r.AppendText("12345"))
		err := r.AppendText("6789")
		assert.ErrorIs(t, err, ErrBufferOverflow)
		assert.True(t, r.Overflowed())
		assert.Equal(t, 8, r.Len())

		p := make([]byte, 16)
		n := r.Drain(p)
		assert.Equal(t, "12345678", string(p[:n]))
		assert.False(t, r.Overflowed())
	})
}
