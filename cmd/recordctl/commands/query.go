package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/taoyao-code/record-server/internal/cli/output"
	"github.com/taoyao-code/record-server/internal/health"
	"github.com/taoyao-code/record-server/internal/recordstore"
	"github.com/taoyao-code/record-server/internal/session"
)

type recordTable []recordstore.Record

func (r recordTable) Headers() []string { return []string{"Name", "Number"} }

func (r recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, rec := range r {
		rows = append(rows, []string{rec.Name, rec.Number})
	}
	return rows
}

type sessionTable []session.Info

func (s sessionTable) Headers() []string {
	return []string{"ID", "Remote", "Server", "Opened", "Last Seen"}
}

func (s sessionTable) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, info := range s {
		rows = append(rows, []string{
			info.ID, info.Remote, info.ServerID,
			info.OpenedAt.Format(time.RFC3339), info.LastSeen.Format(time.RFC3339),
		})
	}
	return rows
}

func newListCmd(g *globalFlags) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.printer(cmd)
			if err != nil {
				return err
			}
			page, err := g.api().ListRecords(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if p.Format() != output.FormatTable {
				return p.Print(page)
			}
			if len(page.Records) == 0 {
				p.Println("No records.")
				return nil
			}
			return p.Print(recordTable(page.Records))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (server default when 0)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func newGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show the first record with NAME via the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.printer(cmd)
			if err != nil {
				return err
			}
			rec, err := g.api().GetRecord(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p.Format() != output.FormatTable {
				return p.Print(rec)
			}
			return p.Print(recordTable{*rec})
		},
	}
}

func newSessionsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List connected clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.printer(cmd)
			if err != nil {
				return err
			}
			list, err := g.api().ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if p.Format() != output.FormatTable {
				return p.Print(list)
			}
			if len(list.Sessions) == 0 {
				p.Println("No sessions.")
				return nil
			}
			return p.Print(sessionTable(list.Sessions))
		},
	}
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.printer(cmd)
			if err != nil {
				return err
			}
			report, err := g.api().Health(cmd.Context())
			if err != nil {
				return err
			}
			if p.Format() != output.FormatTable {
				return p.Print(report)
			}
			return output.SimpleTable(p.Writer(), healthPairs(report))
		},
	}
}

func healthPairs(r *health.HealthReport) [][2]string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := [][2]string{{"status", string(r.Status)}}
	for _, name := range names {
		c := r.Checks[name]
		pairs = append(pairs, [2]string{name, fmt.Sprintf("%s (%s)", c.Status, c.Message)})
	}
	return pairs
}
