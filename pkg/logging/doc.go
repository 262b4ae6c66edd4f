// Package logging provides the subsystem-oriented logger used across kofr.
//
// Messages are routed through a log/slog logger whose handler is a
// charmbracelet/log logger, so entries render as leveled, timestamped lines.
// Command output owns stdout; diagnostics always go to the writer passed to
// InitForCLI, which the root command sets to stderr.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr)
//
//	logging.Debug("Connect", "GET %s -> %d", url, status)
//	logging.Warn("Config", "created empty config at %s", path)
//	logging.Error("Prober", err, "host %s offline", host)
//
// # Levels
//
// The default level is Warn. ParseLevel maps the --log-level flag values
// (debug, info, warn, error) to a LogLevel.
package logging
