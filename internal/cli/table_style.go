package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// columnPadding is the space between two columns.
const columnPadding = "   "

// PlainTableWriter provides kubectl-style plain table output without box-drawing characters.
// Rows are laid out by go-pretty with a borderless style so the output pipes
// cleanly into grep, awk and cut.
type PlainTableWriter struct {
	// headers contains the column header names
	headers []string
	// rows contains the table data rows
	rows [][]string
	// showHeaders controls whether to display the header row
	showHeaders bool
	// colors maps a column index to a per-value color picker
	colors map[int]func(string) text.Colors
	// output is the writer to output to
	output io.Writer
}

// NewPlainTableWriter creates a new plain table writer with kubectl-style formatting.
// By default, headers are shown. Use SetNoHeaders(true) to suppress them.
func NewPlainTableWriter(output io.Writer) *PlainTableWriter {
	return &PlainTableWriter{
		headers:     []string{},
		rows:        [][]string{},
		showHeaders: true,
		colors:      map[int]func(string) text.Colors{},
		output:      output,
	}
}

// SetHeaders sets the column headers for the table.
// Headers are displayed in uppercase.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	for i, h := range headers {
		w.headers[i] = strings.ToUpper(h)
	}
}

// SetNoHeaders controls whether to suppress the header row.
func (w *PlainTableWriter) SetNoHeaders(noHeaders bool) {
	w.showHeaders = !noHeaders
}

// ColorizeColumn colors the cells of column index with the colors picked for
// each cell value.
func (w *PlainTableWriter) ColorizeColumn(index int, pick func(value string) text.Colors) {
	w.colors[index] = pick
}

// AppendRow adds a row to the table. Missing cells are left empty and extra
// cells are dropped.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalizedRow := make([]string, len(w.headers))
	copy(normalizedRow, row)
	w.rows = append(w.rows, normalizedRow)
}

// Render outputs the table in kubectl-style format.
func (w *PlainTableWriter) Render() {
	if len(w.headers) == 0 {
		return
	}
	if len(w.rows) == 0 && !w.showHeaders {
		return
	}

	t := table.NewWriter()
	t.SetStyle(plainStyle())
	if w.showHeaders {
		t.AppendHeader(toRow(w.headers))
	}
	for _, row := range w.rows {
		t.AppendRow(toRow(row))
	}

	var configs []table.ColumnConfig
	for idx, pick := range w.colors {
		configs = append(configs, table.ColumnConfig{
			Number: idx + 1,
			Transformer: func(val interface{}) string {
				s := fmt.Sprint(val)
				return pick(s).Sprint(s)
			},
		})
	}
	t.SetColumnConfigs(configs)

	for _, line := range strings.Split(t.Render(), "\n") {
		fmt.Fprintln(w.output, strings.TrimRight(line, " "))
	}
}

func plainStyle() table.Style {
	style := table.StyleDefault
	style.Name = "Plain"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = columnPadding
	style.Options = table.Options{}
	style.Format.Header = text.FormatUpper
	return style
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
