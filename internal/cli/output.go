package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a kubectl-style plain table
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON formats output as indented JSON
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML converted from JSON
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatTemplate renders output through a Go template with sprig functions
	OutputFormatTemplate OutputFormat = "template"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatJSON,
	OutputFormatYAML,
	OutputFormatTemplate,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
// Returns nil if valid, or an error with a helpful message listing valid formats.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML, OutputFormatTemplate:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml, template)", format)
	}
}

// Printer renders command results in the selected output format.
type Printer struct {
	Out       io.Writer
	Format    OutputFormat
	Template  string
	NoHeaders bool
	// Color enables colored state cells in tables.
	Color bool
}

// Print writes data. In table format, fill populates the table; commands
// without a tabular view pass a nil fill and get indented JSON instead.
func (p *Printer) Print(data any, fill func(t *PlainTableWriter)) error {
	switch p.Format {
	case OutputFormatJSON:
		return p.printJSON(data)
	case OutputFormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = p.Out.Write(out)
		return err
	case OutputFormatTemplate:
		return p.printTemplate(data)
	case OutputFormatTable, "":
		if fill == nil {
			return p.printJSON(data)
		}
		t := p.NewTable()
		fill(t)
		t.Render()
		return nil
	default:
		return ValidateOutputFormat(string(p.Format))
	}
}

// NewTable returns a table writer honoring the printer's header and color settings.
func (p *Printer) NewTable() *PlainTableWriter {
	t := NewPlainTableWriter(p.Out)
	t.SetNoHeaders(p.NoHeaders)
	return t
}

// StateColumn colors a state column when color output is enabled.
func (p *Printer) StateColumn(t *PlainTableWriter, index int) {
	if p.Color {
		t.ColorizeColumn(index, StateColors)
	}
}

func (p *Printer) printJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.Out, string(out))
	return err
}

// printTemplate executes the template against the JSON form of data so
// fields are addressed by their JSON names, e.g. {{range .}}{{.name}}{{end}}.
func (p *Printer) printTemplate(data any) error {
	if p.Template == "" {
		return fmt.Errorf("--template is required with -o template")
	}
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(p.Template)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	if err := tmpl.Execute(p.Out, generic); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}

// StateColors picks a color for connector, task and host states.
func StateColors(state string) text.Colors {
	switch state {
	case "RUNNING", "Online":
		return text.Colors{text.FgGreen}
	case "PAUSED", "RESTARTING", "UNASSIGNED", "CREATED":
		return text.Colors{text.FgYellow}
	case "FAILED", "LOST", "DEAD", "Offline":
		return text.Colors{text.FgRed}
	default:
		return text.Colors{}
	}
}
