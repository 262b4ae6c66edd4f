package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither VISUAL nor EDITOR is set.
const DefaultEditor = "vi"

// EditorFromEnv returns $VISUAL, then $EDITOR, then vi.
func EditorFromEnv() string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return DefaultEditor
}

// Editor lets the user change a document in an external editor process.
type Editor struct {
	// Command is split on whitespace; the temp file path is appended.
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Edit writes content to a temp file named after name, waits for the editor
// to exit and returns the file content afterwards.
func (e *Editor) Edit(name string, content []byte) ([]byte, error) {
	args := strings.Fields(e.Command)
	if len(args) == 0 {
		return nil, fmt.Errorf("no editor configured")
	}

	f, err := os.CreateTemp("", name+"-edit-*.json")
	if err != nil {
		return nil, fmt.Errorf("could not create tempfile for editing: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not write tempfile for editing: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("could not write tempfile for editing: %w", err)
	}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor %q failed: %w", e.Command, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read edited file: %w", err)
	}
	return edited, nil
}
