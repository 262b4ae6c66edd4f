package cli

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// WithSpinner runs fn while a spinner with the given suffix turns on w.
// Quiet mode, or a w that is not a file, runs fn without a spinner; the
// spinner library itself stays silent when the file is not a terminal.
func WithSpinner[T any](w io.Writer, quiet bool, suffix string, fn func() (T, error)) (T, error) {
	f, ok := w.(*os.File)
	if quiet || !ok {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()

	return fn()
}
