package cmd

import (
	"context"
	"fmt"
	"strconv"

	"kofr/internal/cli"
	"kofr/internal/connect"
	kstrings "kofr/pkg/strings"

	"github.com/spf13/cobra"
)

func newTaskCmd(a *app) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Operate on connector tasks",
		Long: `Inspect and restart the tasks of a connector.

Examples:
  kofr task list my-sink
  kofr task status my-sink 0
  kofr task restart my-sink 0`,
		Args: cobra.NoArgs,
	}
	taskCmd.AddCommand(
		newTaskListCmd(a),
		newTaskStatusCmd(a),
		newTaskRestartCmd(a),
	)
	return taskCmd
}

func newTaskListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <connector>",
		Aliases: []string{"ls"},
		Short:   "List the tasks of a connector",
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
			tasks, err := call(a, cmd, "Listing tasks...", func(ctx context.Context) ([]connect.TaskInfo, error) {
				return client.ListTasks(ctx, connect.ConnectorName(args[0]))
			})
			if err != nil {
				return err
			}
			return p.Print(tasks, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"CONNECTOR", "TASK", "CONFIG_KEYS"})
				for _, task := range tasks {
					t.AppendRow([]string{
						string(task.ID.Connector),
						strconv.FormatUint(uint64(task.ID.Task), 10),
						strconv.Itoa(len(task.Config)),
					})
				}
			})
		},
	}
}

func newTaskStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <connector> <task-id>",
		Short: "Get the status of one task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			status, err := call(a, cmd, "Fetching task status...", func(ctx context.Context) (*connect.TaskStatus, error) {
				return client.GetTaskStatus(ctx, connect.ConnectorName(args[0]), id)
			})
			if err != nil {
				return err
			}
			return p.Print(status, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"ID", "STATE", "WORKER_ID", "TRACE"})
				p.StateColumn(t, 1)
				t.AppendRow([]string{
					strconv.FormatUint(uint64(status.ID), 10),
					status.State.String(),
					status.WorkerID,
					kstrings.TruncateTrace(status.Trace, kstrings.DefaultTraceMaxLen),
				})
			})
		},
	}
}

func newTaskRestartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restart <connector> <task-id>",
		Short: "Restart one task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[1])
			if err != nil {
				return err
			}
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			if err := client.RestartTask(cmd.Context(), connect.ConnectorName(args[0]), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task: %s/%d restarted.\n", args[0], id)
			return nil
		},
	}
}

func parseTaskID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: must be a non-negative integer", s)
	}
	return uint(id), nil
}
