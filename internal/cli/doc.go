// Package cli provides the presentation layer shared by kofr commands.
//
// # Output
//
// Printer renders command results in one of four formats selected with
// --output/-o:
//   - table: kubectl-style borderless tables built with PlainTableWriter
//   - json: indented JSON
//   - yaml: YAML produced from the JSON form, so field names match
//   - template: a Go template with sprig functions, executed against the
//     JSON form of the result
//
// Commands without a tabular view pass a nil fill function to Print and get
// indented JSON in table mode. State cells (RUNNING, FAILED, Online, ...)
// are colored when stdout is a terminal and neither --no-color nor NO_COLOR
// is set.
//
// # Interaction
//
// WithSpinner shows a progress spinner on stderr while a request runs.
// Editor hands a document to $VISUAL or $EDITOR and returns the edited
// content.
//
// # Errors
//
// ClassifyConnectionError sorts connection failures into TLS, DNS, timeout,
// network and unhealthy-worker problems and attaches a hint for each.
// ExplainError applies it to failed requests and, host by host, to clusters
// without an available host.
//
// ResolveCluster picks the named override cluster, or current-cluster from
// the config file when no override is given.
package cli
