package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"kofr/internal/cli"
	"kofr/internal/connect"

	"github.com/spf13/cobra"
)

func newPluginCmd(a *app) *cobra.Command {
	pluginCmd := &cobra.Command{
		Use:     "plugin",
		Aliases: []string{"plugins"},
		Short:   "Inspect installed connector plugins",
		Args:    cobra.NoArgs,
	}
	pluginCmd.AddCommand(newPluginListCmd(a), newPluginValidateCmd(a))
	return pluginCmd
}

func newPluginListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List connector plugins installed in the cluster",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			plugins, err := call(a, cmd, "Listing plugins...", client.ListPlugins)
			if err != nil {
				return err
			}
			return p.Print(plugins, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"CLASS", "TYPE", "VERSION"})
				for _, plugin := range plugins {
					t.AppendRow([]string{plugin.Class, plugin.Type, plugin.Version})
				}
			})
		},
	}
}

func newPluginValidateCmd(a *app) *cobra.Command {
	var (
		file  string
		class string
	)

	cmd := &cobra.Command{
		Use:   "validate -f <config.json>",
		Short: "Validate a connector configuration against its plugin",
		Long: `Send a connector configuration to the cluster for validation. The plugin
class is taken from --class or from the connector.class key of the config.

The command fails when the cluster reports any error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var config connect.ConnectorConfig
			if err := json.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("invalid connector config: %w", err)
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			p, err := a.printer(cmd)
			if err != nil {
				return err
			}
			result, err := call(a, cmd, "Validating config...", func(ctx context.Context) (*connect.ConfigValidation, error) {
				return client.ValidateConfig(ctx, class, config)
			})
			if err != nil {
				return err
			}

			fieldErrors := result.FieldErrors()
			if p.Format == cli.OutputFormatTable && len(fieldErrors) == 0 {
				if result.ErrorCount > 0 {
					return fmt.Errorf("config for %s has %d error(s)", result.Name, result.ErrorCount)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("config is valid"))
				return nil
			}

			err = p.Print(result, func(t *cli.PlainTableWriter) {
				t.SetHeaders([]string{"KEY", "ERROR"})
				keys := make([]string, 0, len(fieldErrors))
				for k := range fieldErrors {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					t.AppendRow([]string{k, strings.Join(fieldErrors[k], "; ")})
				}
			})
			if err != nil {
				return err
			}

			if result.ErrorCount > 0 {
				return fmt.Errorf("config for %s has %d error(s)", result.Name, result.ErrorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON object with the connector config, or - for stdin (required)")
	cmd.Flags().StringVar(&class, "class", "", "Plugin class, defaults to the config's connector.class")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
