package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"kofr/internal/cli"
	"kofr/internal/connect"

	"github.com/spf13/cobra"
)

func newConnectorCmd(a *app) *cobra.Command {
	connectorCmd := &cobra.Command{
		Use:     "connector",
		Aliases: []string{"cn"},
		Short:   "Operate on connectors",
		Long: `Create, inspect, change and control connectors of the current cluster.

Examples:
  kofr connector create -f my-sink.json
  kofr cn describe my-sink
  kofr cn edit my-sink
  kofr cn patch my-sink --set tasks.max=4 --unset errors.tolerance
  kofr cn restart my-sink --include-tasks --only-failed`,
		Args: cobra.NoArgs,
	}

	connectorCmd.AddCommand(
		newConnectorCreateCmd(a),
		newConnectorDescribeCmd(a),
		newConnectorEditCmd(a),
		newConnectorPatchCmd(a),
		newConnectorStatusCmd(a),
		newConnectorConfigCmd(a),
		newConnectorLifecycleCmd(a, "pause", "Pause a connector and its tasks", "paused",
			func(c *connect.Client) func(context.Context, connect.ConnectorName) error { return c.PauseConnector }),
		newConnectorLifecycleCmd(a, "resume", "Resume a paused connector", "resumed",
			func(c *connect.Client) func(context.Context, connect.ConnectorName) error { return c.ResumeConnector }),
		newConnectorRestartCmd(a),
		newConnectorLifecycleCmd(a, "delete", "Delete a connector", "deleted",
			func(c *connect.Client) func(context.Context, connect.ConnectorName) error { return c.DeleteConnector }),
	)
	return connectorCmd
}

func newConnectorCreateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create -f <file>",
		Short: "Create a connector",
		Long: `Create a connector from a JSON document of the form

  {"name": "my-sink", "config": {"connector.class": "...", ...}}

Use -f - to read the document from stdin. When "name" is missing it is
taken from config.name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			req, err := parseCreateRequest(data)
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

			created, err := call(a, cmd, "Creating connector...", func(ctx context.Context) (*connect.Connector, error) {
				return client.CreateConnector(ctx, req)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "successfully created connector: %s\n", req.Name)
			return p.Print(created, nil)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with name and config, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseCreateRequest decodes a create document.
func parseCreateRequest(data []byte) (connect.CreateConnectorRequest, error) {
	var req connect.CreateConnectorRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid connector definition: %w", err)
	}
	if req.Name == "" {
		req.Name = connect.ConnectorName(req.Config["name"])
	}
	if req.Name == "" {
		return req, errors.New("invalid connector definition: name is required")
	}
	if req.Config == nil {
		req.Config = connect.ConnectorConfig{}
	}
	return req, nil
}

func newConnectorDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Describe a connector's config and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			described, err := call(a, cmd, "Describing connector...", func(ctx context.Context) (*connect.DescribeConnector, error) {
				return client.Describe(ctx, connect.ConnectorName(args[0]))
			})
			if err != nil {
				return err
			}
			return p.Print(described, nil)
		},
	}
}

func newConnectorStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <name>",
		Short: "Get a connector's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			status, err := call(a, cmd, "Fetching status...", func(ctx context.Context) (*connect.ConnectorStatus, error) {
				return client.GetConnectorStatus(ctx, connect.ConnectorName(args[0]))
			})
			if err != nil {
				return err
			}
			return p.Print(status, nil)
		},
	}
}

func newConnectorConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config <name>",
		Short: "Get a connector's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			config, err := call(a, cmd, "Fetching config...", func(ctx context.Context) (connect.ConnectorConfig, error) {
				return client.GetConnectorConfig(ctx, connect.ConnectorName(args[0]))
			})
			if err != nil {
				return err
			}
			return p.Print(config, nil)
		},
	}
}

func newConnectorEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name>",
		Short: "Update the configuration of an existing connector in your editor",
		Long: `Open the connector's configuration as JSON in $VISUAL, $EDITOR or vi.
The configuration is replaced when the file was changed after the editor exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := connect.ConnectorName(args[0])
			client, err := a.client(cmd)
			if err != nil {
				return err
			}

			current, err := client.GetConnectorConfig(cmd.Context(), name)
			if err != nil {
				return err
			}
			original, err := json.MarshalIndent(current, "", "  ")
			if err != nil {
				return err
			}

			editor := &cli.Editor{
				Command: cli.EditorFromEnv(),
				Stdin:   cmd.InOrStdin(),
				Stdout:  cmd.OutOrStdout(),
				Stderr:  cmd.ErrOrStderr(),
			}
			edited, err := editor.Edit(string(name), original)
			if err != nil {
				return err
			}

			var updated connect.ConnectorConfig
			if err := json.Unmarshal(edited, &updated); err != nil {
				return fmt.Errorf("edited config is not a valid JSON object: %w", err)
			}
			if current.Equal(updated) {
				fmt.Fprintln(cmd.OutOrStdout(), "Edit cancelled, no changes were made")
				return nil
			}

			if _, err := client.PutConnectorConfig(cmd.Context(), name, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connector: %s edited.\n", name)
			return nil
		},
	}
}

func newConnectorPatchCmd(a *app) *cobra.Command {
	var (
		set   []string
		unset []string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "patch <name>",
		Short: "Change single configuration keys of a connector",
		Long: `Merge changes onto the current configuration and replace it.

Keys from --file are merged first, then --set, then --unset.

Examples:
  kofr cn patch my-sink --set tasks.max=4
  kofr cn patch my-sink --unset transforms --unset transforms.route.type
  kofr cn patch my-sink -f overrides.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := connect.ConnectorName(args[0])
			if len(set) == 0 && len(unset) == 0 && file == "" {
				return errors.New("nothing to patch: use --set, --unset or --file")
			}

			var overrides connect.ConnectorConfig
			if file != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &overrides); err != nil {
					return fmt.Errorf("invalid patch file: %w", err)
				}
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			current, err := client.GetConnectorConfig(cmd.Context(), name)
			if err != nil {
				return err
			}

			patched, err := patchConfig(current, overrides, set, unset)
			if err != nil {
				return err
			}
			if current.Equal(patched) {
				fmt.Fprintf(cmd.OutOrStdout(), "connector: %s unchanged.\n", name)
				return nil
			}

			if _, err := client.PutConnectorConfig(cmd.Context(), name, patched); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connector: %s patched.\n", name)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Set key=value (repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "Remove a key (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object of keys to merge, or - for stdin")
	return cmd
}

// patchConfig returns a copy of current with overrides, set and unset applied in that order.
func patchConfig(current, overrides connect.ConnectorConfig, set, unset []string) (connect.ConnectorConfig, error) {
	patched := current.Clone()
	for k, v := range overrides {
		patched[k] = v
	}
	for _, kv := range set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		patched[strings.TrimSpace(k)] = v
	}
	for _, k := range unset {
		delete(patched, k)
	}
	return patched, nil
}

// newConnectorLifecycleCmd builds pause, resume and delete, which only differ
// in the client call and the past-tense verb printed on success.
func newConnectorLifecycleCmd(a *app, use, short, done string, op func(*connect.Client) func(context.Context, connect.ConnectorName) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := connect.ConnectorName(args[0])
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			if err := op(client)(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connector: %s %s.\n", name, done)
			return nil
		},
	}
}

func newConnectorRestartCmd(a *app) *cobra.Command {
	var includeTasks, onlyFailed bool

	cmd := &cobra.Command{
		Use:   "restart <name>",
		Short: "Restart a connector",
		Long: `Restart a connector, optionally together with its tasks.

When the cluster accepts the restart asynchronously the in-flight status is
printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := connect.ConnectorName(args[0])
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}

			outcome, err := client.RestartConnector(cmd.Context(), name, includeTasks, onlyFailed)
			if err != nil {
				return err
			}
			switch outcome.Kind {
			case connect.RestartAccepted:
				return p.Print(outcome.Status, nil)
			case connect.RestartInfo:
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "connector: %s restarted.\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeTasks, "include-tasks", false, "Also restart the connector's tasks")
	cmd.Flags().BoolVar(&onlyFailed, "only-failed", false, "Only restart instances in FAILED state")
	return cmd
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}
