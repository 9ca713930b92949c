// Package client recordctl 使用的 TCP 命令客户端与 HTTP 查询客户端
package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taoyao-code/record-server/internal/protocol/recordcmd"
)

var ErrInvalidArgument = errors.New("invalid argument")

// BuildAdd 生成 "a <number> <name>;"
func BuildAdd(number, name string) (string, error) {
	if err := checkToken("number", number); err != nil {
		return "", err
	}
	if err := checkToken("name", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("%c %s %s%c", recordcmd.VerbAdd, number, name, recordcmd.Terminator), nil
}

// BuildFind 生成 "f <name>;"
func BuildFind(name string) (string, error) {
	if err := checkToken("name", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("%c %s%c", recordcmd.VerbFind, name, recordcmd.Terminator), nil
}

// BuildRemove 生成 "r <name>;"
func BuildRemove(name string) (string, error) {
	if err := checkToken("name", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("%c %s%c", recordcmd.VerbRemove, name, recordcmd.Terminator), nil
}

// checkToken 号码与名称不能为空，不能包含空白或终止符
func checkToken(field, s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidArgument, field)
	}
	if strings.ContainsAny(s, " \t\n"+string(recordcmd.Terminator)) {
		return fmt.Errorf("%w: %s %q contains whitespace or %q", ErrInvalidArgument, field, s, recordcmd.Terminator)
	}
	return nil
}
