package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kofr/internal/cli"
	"kofr/internal/cluster"
	"kofr/internal/connect"
	kofrctx "kofr/internal/context"
	"kofr/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v *viper.Viper
}

// bind makes every global flag readable through viper, with KOFR_ env
// variables as fallback. The key "cluster" maps to KOFR_CLUSTER.
func (a *app) bind(flags *pflag.FlagSet) {
	newEnvViper(a.v)
	_ = a.v.BindPFlags(flags)
}

func (a *app) initLogging(w io.Writer) error {
	level, err := logging.ParseLevel(a.v.GetString(flagLogLevel))
	if err != nil {
		return err
	}
	logging.InitForCLI(level, w)
	return nil
}

// loadConfig reads the config file. The default location is created on
// first use; an explicitly named file must exist.
func (a *app) loadConfig() (*kofrctx.Config, error) {
	path := a.v.GetString(flagConfigFile)
	if path == "" {
		defaultPath, err := kofrctx.DefaultPath()
		if err != nil {
			return nil, err
		}
		return logLoaded(kofrctx.LoadOrCreate(defaultPath))
	}

	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	return logLoaded(kofrctx.Load(expanded))
}

func logLoaded(config *kofrctx.Config, err error) (*kofrctx.Config, error) {
	if err != nil {
		return nil, err
	}
	logging.Debug("Config", "loaded %d cluster(s) from %s", len(config.Clusters), config.FilePath())
	return config, nil
}

// targetCluster resolves the cluster connector commands run against. The
// viper key "cluster" yields --cluster, then KOFR_CLUSTER.
func (a *app) targetCluster(config *kofrctx.Config) (*kofrctx.ClusterContext, error) {
	return cli.ResolveCluster(config, a.v.GetString(flagCluster))
}

// client loads the configuration, picks the first reachable host of the
// target cluster and returns a client for it.
func (a *app) client(cmd *cobra.Command) (*connect.Client, error) {
	config, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	target, err := a.targetCluster(config)
	if err != nil {
		return nil, err
	}

	timeout := a.timeout()
	prober := cluster.NewProber(timeout)
	host, err := cli.WithSpinner(cmd.ErrOrStderr(), a.quiet(), "Connecting to "+target.Name+"...", func() (string, error) {
		return prober.AvailableHost(cmd.Context(), target)
	})
	if err != nil {
		return nil, err
	}
	client := connect.NewClient(host, connect.WithTimeout(timeout))
	logging.Debug("Cluster", "using host %s of cluster %s", client.Host(), target.Name)
	return client, nil
}

// printer builds the output printer from the global output flags.
func (a *app) printer(cmd *cobra.Command) (*cli.Printer, error) {
	flags := cli.CommandFlags{
		OutputFormat: a.v.GetString(cli.FlagOutput),
		Template:     a.v.GetString(cli.FlagTemplate),
		NoHeaders:    a.v.GetBool(cli.FlagNoHeaders),
		Quiet:        a.quiet(),
		NoColor:      a.v.GetBool(cli.FlagNoColor),
	}
	return flags.ToPrinter(cmd.OutOrStdout())
}

// outputChanged reports whether -o was given explicitly.
func (a *app) outputChanged(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup(cli.FlagOutput)
	return f != nil && f.Changed
}

func (a *app) quiet() bool {
	return a.v.GetBool(cli.FlagQuiet)
}

// call runs fn behind a spinner unless --quiet is set.
func call[T any](a *app, cmd *cobra.Command, suffix string, fn func(ctx context.Context) (T, error)) (T, error) {
	return cli.WithSpinner(cmd.ErrOrStderr(), a.quiet(), suffix, func() (T, error) {
		return fn(cmd.Context())
	})
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
