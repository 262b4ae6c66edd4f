package cmd

import (
	"fmt"

	"kofr/internal/cli"
	"kofr/internal/cluster"

	"github.com/spf13/cobra"
)

func newClusterCmd(a *app) *cobra.Command {
	clusterCmd := &cobra.Command{
		Use:   "cluster",
		Short: "Inspect the current cluster",
		Args:  cobra.NoArgs,
	}
	clusterCmd.AddCommand(newClusterStatusCmd(a))
	return clusterCmd
}

// clusterStatus is the document printed by cluster status.
type clusterStatus struct {
	Cluster        string               `json:"cluster"`
	KafkaClusterID string               `json:"kafka_cluster_id,omitempty"`
	Hosts          []cluster.HostStatus `json:"hosts"`
}

func newClusterStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which hosts of the current cluster are online",
		Long: `Probe every host of the current cluster and print whether it is Online
or Offline. Hosts are probed independently; an offline host is not an
error. The Kafka cluster id is shown when an online host reports it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := a.loadConfig()
			if err != nil {
				return err
			}
			target, err := a.targetCluster(config)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}

			prober := cluster.NewProber(a.timeout())
			statuses, _ := cli.WithSpinner(cmd.ErrOrStderr(), a.quiet(), "Probing hosts...", func() ([]cluster.HostStatus, error) {
				return prober.ProbeAll(cmd.Context(), target.Hosts), nil
			})

			result := clusterStatus{
				Cluster:        target.Name,
				KafkaClusterID: cluster.ClusterID(statuses),
				Hosts:          statuses,
			}
			err = p.Print(result, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"HOST", "STATE"})
				p.StateColumn(t, 1)
				for _, s := range statuses {
					t.AppendRow([]string{s.Host, string(s.State)})
				}
			})
			if err != nil {
				return err
			}

			if p.Format == cli.OutputFormatTable && result.KafkaClusterID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nKafka cluster id: %s\n", result.KafkaClusterID)
			}
			if !anyOnline(statuses) && !a.quiet() {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("no host of cluster "+target.Name+" is online"))
			}
			return nil
		},
	}
}

func anyOnline(statuses []cluster.HostStatus) bool {
	for _, s := range statuses {
		if s.State == cluster.Online {
			return true
		}
	}
	return false
}
