package cmd

import (
	"context"
	"fmt"
	"sort"

	"kofr/internal/cli"
	"kofr/internal/connect"

	"github.com/spf13/cobra"
)

func newTopicCmd(a *app) *cobra.Command {
	topicCmd := &cobra.Command{
		Use:   "topic",
		Short: "Operate on the active topics of a connector",
		Args:  cobra.NoArgs,
	}
	topicCmd.AddCommand(newTopicListCmd(a), newTopicResetCmd(a))
	return topicCmd
}

func newTopicListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <connector>",
		Aliases: []string{"ls"},
		Short:   "List the topics a connector is using",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			topics, err := call(a, cmd, "Listing topics...", func(ctx context.Context) (connect.Topics, error) {
				return client.ListTopics(ctx, connect.ConnectorName(args[0]))
			})
			if err != nil {
				return err
			}
			return p.Print(topics, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"CONNECTOR", "TOPIC"})
				names := make([]string, 0, len(topics))
				for name := range topics {
					names = append(names, string(name))
				}
				sort.Strings(names)
				for _, name := range names {
					list := append([]string(nil), topics[connect.ConnectorName(name)].Topics...)
					sort.Strings(list)
					for _, topic := range list {
						t.AppendRow([]string{name, topic})
					}
				}
			})
		},
	}
}

func newTopicResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <connector>",
		Short: "Reset the active topic set of a connector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			if err := client.ResetTopics(cmd.Context(), connect.ConnectorName(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connector: %s topics reset.\n", args[0])
			return nil
		},
	}
}
