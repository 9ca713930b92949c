package recordcmd

import "errors"

// Terminator 命令分隔符
const Terminator byte = ';'

// NotFoundSuffix 查找/删除未命中时的响应后缀
const NotFoundSuffix = "person not found\n"

// 缓冲区默认容量
const (
	DefaultCommandCapacity = 1023
)

var (
	// ErrMalformedCommand 未知动词或缺少分隔空格（静默丢弃，不产生响应）
	ErrMalformedCommand = errors.New("malformed command")
	// ErrUnterminatedOnOverflow 命令缓冲区写满仍未出现终止符（整段丢弃）
	ErrUnterminatedOnOverflow = errors.New("command buffer full without terminator")
	// ErrResponsePending 存在未读响应时拒绝写入
	ErrResponsePending = errors.New("response pending")
	// ErrBufferOverflow 响应缓冲区容量不足，输出被截断
	ErrBufferOverflow = errors.New("response buffer overflow")
)

// Verb 命令动词
type Verb byte

const (
	VerbAdd    Verb = 'a'
	VerbFind   Verb = 'f'
	VerbRemove Verb = 'r'
)

// Valid 是否为已知动词
func (v Verb) Valid() bool {
	return v == VerbAdd || v == VerbFind || v == VerbRemove
}

func (v Verb) String() string {
	switch v {
	case VerbAdd:
		return "add"
	case VerbFind:
		return "find"
	case VerbRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Command 已解析的命令单元，操作数为独立副本
type Command struct {
	Verb   Verb
	Number string // 仅 add 使用
	Name   string
}

// Outcome 单次解析尝试的结果
type Outcome int

const (
	OutcomeDispatch     Outcome = iota // 解析成功，可分发
	OutcomePartial                     // 半包，等待更多输入
	OutcomeMalformed                   // 格式错误，已丢弃至终止符
	OutcomeUnterminated                // 缓冲区满且无终止符，已整体丢弃
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDispatch:
		return "dispatch"
	case OutcomePartial:
		return "partial"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnterminated:
		return "unterminated"
	default:
		return "unknown"
	}
}

// Err 返回丢弃类结果对应的错误
func (o Outcome) Err() error {
	switch o {
	case OutcomeMalformed:
		return ErrMalformedCommand
	case OutcomeUnterminated:
		return ErrUnterminatedOnOverflow
	default:
		return nil
	}
}
