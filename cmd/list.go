package cmd

import (
	"strconv"

	"kofr/internal/cli"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active connectors in the current cluster",
		Long: `List the connectors of the current cluster with their state, task count,
type and worker.

Examples:
  kofr ls
  kofr ls --names
  kofr ls -o json
  kofr ls -o template --template '{{range .}}{{.name}}{{"\n"}}{{end}}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}

			if namesOnly {
				names, err := call(a, cmd, "Listing connectors...", client.ListConnectorNames)
				if err != nil {
					return err
				}
				return p.Print(names, func(t *cli.PlainTableWriter) {
					t.SetHeaders([]string{"NAME"})
					for _, n := range names {
						t.AppendRow([]string{string(n)})
					}
				})
			}

			connectors, err := call(a, cmd, "Listing connectors...", client.ListConnectorsVerbose)
			if err != nil {
				return err
			}
			return p.Print(connectors, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"NAME", "STATE", "TASKS", "TYPE", "WORKER_ID"})
				p.StateColumn(t, 1)
				for _, c := range connectors {
					t.AppendRow([]string{
						string(c.Name),
						c.State.String(),
						strconv.Itoa(c.Tasks),
						c.Type.String(),
						c.WorkerID,
					})
				}
			})
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "Only list connector names")
	return cmd
}
