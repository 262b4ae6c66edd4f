package cmd

import (
	"fmt"
	"strings"

	"kofr/internal/cli"
	kofrctx "kofr/internal/context"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command group. None of its subcommands
// contact a cluster.
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Handle kofr configuration",
		Long: `Manage the named Kafka Connect clusters kofr knows about.

Examples:
  kofr config get-clusters                                # List clusters
  kofr config current-context                             # Show the current cluster
  kofr config use-cluster production                      # Switch cluster
  kofr config add-cluster staging --hosts http://a:8083,http://b:8083
  kofr config remove-cluster staging

Clusters are stored in ~/.kofr/config unless --config-file is given.`,
		Args: cobra.NoArgs,
	}

	configCmd.AddCommand(
		newUseClusterCmd(a),
		newCurrentContextCmd(a),
		newGetClustersCmd(a),
		newAddClusterCmd(a),
		newRemoveClusterCmd(a),
	)
	return configCmd
}

func newUseClusterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "use-cluster <name>",
		Short:             "Switch the current cluster",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeClusterNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := config.UseCluster(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to cluster %q\n", args[0])
			return nil
		},
	}
}

func newCurrentContextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Print the name of the current cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}
			current, err := config.CurrentContext()
			if err != nil {
				return err
			}

			if !a.outputChanged(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), current.Name)
				return nil
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			return p.Print(current, clusterTable([]kofrctx.ClusterContext{*current}, current.Name))
		},
	}
}

func newGetClustersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get-clusters",
		Aliases: []string{"clusters"},
		Short:   "List all configured clusters",
		Long: `List all configured clusters, one name per line.

With an explicit -o table the hosts are shown as well and the current
cluster is marked with an asterisk (*).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}

			if !a.outputChanged(cmd) {
				for _, name := range config.ClusterNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			return p.Print(config.Clusters, clusterTable(config.Clusters, config.CurrentCluster))
		},
	}
}

func clusterTable(clusters []kofrctx.ClusterContext, current string) func(t *cli.PlainTableWriter) {
	return func(t *cli.PlainTableWriter) {
		t.SetHeaders([]string{"CURRENT", "NAME", "HOSTS"})
		for _, c := range clusters {
			marker := ""
			if c.Name == current {
				marker = "*"
			}
			t.AppendRow([]string{marker, c.Name, strings.Join(c.Hosts, ",")})
		}
	}
}

func newAddClusterCmd(a *app) *cobra.Command {
	var hosts []string

	cmd := &cobra.Command{
		Use:   "add-cluster <name> --hosts <url>[,<url>...]",
		Short: "Add a cluster and make it the current one",
		Long: `Add a new named cluster. All hosts must serve the same Kafka Connect
cluster; connector commands use the first one that answers.

Examples:
  kofr config add-cluster local --hosts http://localhost:8083
  kofr config add-cluster prod --hosts https://connect-1:8083,https://connect-2:8083`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := config.AddCluster(args[0], compact(hosts)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added cluster %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&hosts, "hosts", nil, "Comma-separated REST endpoints of the cluster (required)")
	_ = cmd.MarkFlagRequired("hosts")
	return cmd
}

func newRemoveClusterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove-cluster <name>",
		Aliases: []string{"rm-cluster"},
		Short:   "Remove a cluster",
		Long: `Remove a cluster by name.

Removing the current cluster does not select another one; connector
commands fail until 'kofr config use-cluster' is run.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeClusterNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := config.RemoveCluster(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed cluster %q\n", args[0])
			return nil
		},
	}
}

// completeClusterNames provides shell completion for cluster names.
func (a *app) completeClusterNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	config, err := a.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.ClusterNames(), cobra.ShellCompDirectiveNoFileComp
}

// compact drops empty entries, e.g. from a trailing comma in --hosts.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
