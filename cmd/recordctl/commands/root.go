// Package commands recordctl 子命令
package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/record-server/internal/cli/client"
	"github.com/taoyao-code/record-server/internal/cli/output"
)

// globalFlags 全局参数
type globalFlags struct {
	tcpAddr string
	server  string
	output  string
	timeout time.Duration
}

// NewRootCmd 构建 recordctl 根命令
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "recordctl",
		Short: "Record server client",
		Long: `recordctl talks to a record server.

add/find/remove/send write command text to the TCP gateway and print the
response stream. list/get/sessions/health query the read-only HTTP API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.tcpAddr, "tcp", "127.0.0.1:7000", "TCP gateway address")
	pf.StringVar(&g.server, "server", "http://127.0.0.1:8080", "HTTP API base URL")
	pf.StringVarP(&g.output, "output", "o", "table", "Output format (table|json|yaml)")
	pf.DurationVar(&g.timeout, "timeout", 5*time.Second, "Request timeout")

	root.AddCommand(
		newSendCmd(g),
		newAddCmd(g),
		newFindCmd(g),
		newRemoveCmd(g),
		newListCmd(g),
		newGetCmd(g),
		newSessionsCmd(g),
		newHealthCmd(g),
	)
	return root
}

func (g *globalFlags) printer(cmd *cobra.Command) (*output.Printer, error) {
	f, err := output.ParseFormat(g.output)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), f), nil
}

func (g *globalFlags) tcp() *client.TCPClient {
	return client.NewTCPClient(g.tcpAddr, g.timeout)
}

func (g *globalFlags) api() *client.HTTPClient {
	return client.NewHTTPClient(g.server, g.timeout)
}
