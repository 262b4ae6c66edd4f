package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Flag names shared by every command that prints data.
const (
	FlagOutput    = "output"
	FlagTemplate  = "template"
	FlagNoHeaders = "no-headers"
	FlagQuiet     = "quiet"
	FlagNoColor   = "no-color"
)

// CommandFlags holds the output-related flag values of one invocation.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json, yaml, template)
	OutputFormat string
	// Template is the Go template used with -o template
	Template string
	// NoHeaders suppresses the header row in table output
	NoHeaders bool
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// NoColor disables colored table cells
	NoColor bool
}

// RegisterOutputFlags registers the output flags as persistent flags of cmd.
//
// The registered flags are:
//   - --output/-o: Output format (table, json, yaml, template), default: "table"
//   - --template: Go template for -o template (sprig functions available)
//   - --no-headers: Suppress header row in table output
//   - --quiet/-q: Suppress spinners and non-essential output
//   - --no-color: Disable colored output
func RegisterOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(FlagOutput, "o", string(OutputFormatTable), "Output format (table, json, yaml, template)")
	cmd.PersistentFlags().String(FlagTemplate, "", "Go template for -o template, e.g. '{{range .}}{{.name}}{{\"\\n\"}}{{end}}'")
	cmd.PersistentFlags().Bool(FlagNoHeaders, false, "Suppress header row in table output")
	cmd.PersistentFlags().BoolP(FlagQuiet, "q", false, "Suppress spinners and non-essential output")
	cmd.PersistentFlags().Bool(FlagNoColor, false, "Disable colored output")
}

// ToPrinter validates the flags and builds a Printer writing to out. Colors
// are only used when out is a terminal, --no-color is unset and NO_COLOR is
// not set in the environment.
func (f *CommandFlags) ToPrinter(out io.Writer) (*Printer, error) {
	if err := ValidateOutputFormat(f.OutputFormat); err != nil {
		return nil, err
	}
	return &Printer{
		Out:       out,
		Format:    OutputFormat(f.OutputFormat),
		Template:  f.Template,
		NoHeaders: f.NoHeaders,
		Color:     !f.NoColor && os.Getenv("NO_COLOR") == "" && IsTerminal(out),
	}, nil
}
