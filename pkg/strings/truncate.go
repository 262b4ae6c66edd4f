// Package strings holds text helpers for table cells.
package strings

import (
	"strings"
)

// DefaultTraceMaxLen is the width a trace cell is cut to in table output.
const DefaultTraceMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateTrace.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateTrace turns a worker stack trace into a single table cell: only
// the first line (the exception and its message) is kept, whitespace is
// collapsed and the result is cut to maxLen runes, ending in "..." when cut.
//
// If maxLen is less than MinTruncateLen it is clamped to MinTruncateLen.
func TruncateTrace(trace string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	trace = strings.TrimLeft(trace, " \t\r\n")
	if i := strings.IndexAny(trace, "\r\n"); i >= 0 {
		trace = trace[:i]
	}
	trace = strings.Join(strings.Fields(trace), " ")

	runes := []rune(trace)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return trace
}
