package cli

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatError formats an error message for CLI output
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}
