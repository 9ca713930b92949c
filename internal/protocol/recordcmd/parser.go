package recordcmd

import "bytes"

// Parse 对命令缓冲区做一次解析尝试
//
// 命令格式（去掉前导空白后）：
//
//	"a " <number> " " <name> ";"
//	"f " <name> ";"
//	"r " <name> ";"
//
// number 为 "a " 之后到下一个空格为止的字节（可跨越 ';'），name 为其后到下一个 ';' 的字节。
//
// 说明：
// - 不足 2 字节或动词/空格不符：格式错误，丢弃至下一个 ';'（不存在则清空），不分发
// - 无终止符且缓冲区未满：半包，原样保留
// - 无终止符且缓冲区已满：整段丢弃
// - 成功：操作数复制为独立字符串后，丢弃至终止符（含）
func Parse(b *CommandBuffer) (Command, Outcome) {
	b.TrimLeadingWhitespace()
	data := b.Bytes()

	if len(data) == 0 {
		return Command{}, OutcomePartial
	}

	verb := Verb(data[0])
	if len(data) < 2 || !verb.Valid() || data[1] != ' ' {
		b.DiscardThrough(Terminator)
		return Command{}, OutcomeMalformed
	}

	cmd := Command{Verb: verb}
	nameStart := 2
	if verb == VerbAdd {
		sp := bytes.IndexByte(data[2:], ' ')
		if sp < 0 {
			return Command{}, waitOrDrop(b)
		}
		cmd.Number = string(data[2 : 2+sp])
		nameStart = 2 + sp + 1
	}

	end := bytes.IndexByte(data[nameStart:], Terminator)
	if end < 0 {
		return Command{}, waitOrDrop(b)
	}
	cmd.Name = string(data[nameStart : nameStart+end])

	// 从 name 之后的终止符起丢弃，number 中的 ';' 不作为边界
	b.shift(nameStart + end + 1)
	return cmd, OutcomeDispatch
}

// waitOrDrop 未找到边界：缓冲区未满时等待更多输入，已满时整段丢弃
func waitOrDrop(b *CommandBuffer) Outcome {
	if b.Full() {
		b.Reset()
		return OutcomeUnterminated
	}
	return OutcomePartial
}
