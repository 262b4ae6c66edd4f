package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"kofr/internal/cli"
	"kofr/internal/cluster"
	"kofr/internal/connect"
	kofrctx "kofr/internal/context"
	"kofr/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, API error, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates the configuration file could not be used.
	ExitCodeConfig = 2
	// ExitCodeUnreachable indicates no host of the cluster could be reached.
	ExitCodeUnreachable = 3
)

// Names of the global flags. They double as viper keys, so KOFR_CONFIG_FILE,
// KOFR_LOG_LEVEL and KOFR_TIMEOUT work too.
const (
	flagConfigFile = "config-file"
	flagLogLevel   = "log-level"
	flagTimeout    = "timeout"
	flagCluster    = "cluster"
)

// envPrefix is the prefix of every environment variable kofr reads.
const envPrefix = "KOFR"

// version is injected by main through SetVersion.
var version = "dev"

// SetVersion sets the version reported by the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// NewRootCmd builds the complete kofr command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "kofr",
		Short: "Kafka Connect CLI for connect cluster management",
		Long: `kofr manages connectors, tasks and topics of Kafka Connect clusters.

Clusters are stored as named contexts in ~/.kofr/config. Connector commands
run against the current cluster, using the first of its hosts that answers.

Examples:
  kofr config add-cluster local --hosts http://localhost:8083
  kofr ls
  kofr connector describe my-sink
  kofr connector restart my-sink --include-tasks --only-failed`,
		Version: version,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed by Execute, after connection failures got a hint attached.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogging(cmd.ErrOrStderr())
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "kofr version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.String(flagConfigFile, "", "Path to the kofr config file (default ~/.kofr/config)")
	flags.String(flagLogLevel, logging.LevelWarn.String(), "Log level (debug, info, warn, error)")
	flags.Duration(flagTimeout, connect.DefaultTimeout, "Timeout for each request to the cluster")
	flags.String(flagCluster, "", "Cluster to use instead of the current cluster")
	cli.RegisterOutputFlags(rootCmd)

	a.bind(flags)

	rootCmd.AddCommand(
		newListCmd(a),
		newConnectorCmd(a),
		newTaskCmd(a),
		newTopicCmd(a),
		newPluginCmd(a),
		newClusterCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
		newSelfUpdateCmd(a),
	)

	return rootCmd
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(handleError(rootCmd.ErrOrStderr(), err))
	}
}

// handleError prints err to w and returns the exit code for it.
func handleError(w io.Writer, err error) int {
	err = cli.ExplainError(err)
	fmt.Fprintln(w, cli.FormatError(err))
	return getExitCode(err)
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if kofrctx.IsConfigError(err) {
		return ExitCodeConfig
	}

	var noHost *cluster.NoAvailableHostError
	if errors.As(err, &noHost) {
		return ExitCodeUnreachable
	}

	var transport *connect.TransportError
	if errors.As(err, &transport) {
		return ExitCodeUnreachable
	}

	var conn *cli.ConnectionError
	if errors.As(err, &conn) {
		return ExitCodeUnreachable
	}

	return ExitCodeError
}

// newEnvViper wires the KOFR_ environment into v.
func newEnvViper(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// timeout returns the request timeout, falling back to the default for
// non-positive values.
func (a *app) timeout() time.Duration {
	d := a.v.GetDuration(flagTimeout)
	if d <= 0 {
		logging.Warn("CLI", "ignoring non-positive timeout %s, using %s", d, connect.DefaultTimeout)
		return connect.DefaultTimeout
	}
	return d
}
