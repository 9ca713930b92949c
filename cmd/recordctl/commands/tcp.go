package commands

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/record-server/internal/cli/client"
)

func newSendCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send [COMMANDS|-]",
		Short: "Send raw command text and print the response stream",
		Example: `  recordctl send 'a 12345 Alice;f Alice;'
  cat commands.txt | recordctl send -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 0 || args[0] == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				payload = b
			} else {
				payload = []byte(args[0])
			}
			return exchange(cmd, g, string(payload))
		},
	}
}

func newAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add NUMBER NAME",
		Short: "Add a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := client.BuildAdd(args[0], args[1])
			if err != nil {
				return err
			}
			return exchange(cmd, g, line)
		},
	}
}

func newFindCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Find the first record with NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := client.BuildFind(args[0])
			if err != nil {
				return err
			}
			return exchange(cmd, g, line)
		},
	}
}

func newRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove the first record with NAME",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := client.BuildRemove(args[0])
			if err != nil {
				return err
			}
			return exchange(cmd, g, line)
		},
	}
}

// exchange 响应流按原样输出；add 与 remove 命中没有输出
func exchange(cmd *cobra.Command, g *globalFlags, payload string) error {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	out, err := g.tcp().Exchange(cmd.Context(), []byte(payload))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
