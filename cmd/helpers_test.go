package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// result captures one kofr invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

func runKofr(t *testing.T, args ...string) result {
	t.Helper()
	return runKofrWithInput(t, "", args...)
}

func runKofrWithInput(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// configWithCluster returns a config file whose current cluster has the given hosts.
func configWithCluster(t *testing.T, name string, hosts ...string) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "current-cluster: %s\nclusters:\n  - name: %s\n    hosts:\n", name, name)
	for _, h := range hosts {
		fmt.Fprintf(&b, "      - %s\n", h)
	}
	return writeConfig(t, b.String())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// unreachableURL returns the URL of a server that has already been shut down.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{}")
	}))
	u := srv.URL
	srv.Close()
	return u
}

// nonEmptyLines splits output into lines, dropping blank ones.
func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
