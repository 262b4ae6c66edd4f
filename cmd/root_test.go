package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"kofr/internal/cluster"
	"kofr/internal/connect"
	kofrctx "kofr/internal/context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "kofr", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)

	for _, name := range []string{flagConfigFile, flagLogLevel, flagTimeout, flagCluster, "output", "quiet"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"list", "connector", "task", "topic", "plugin", "cluster", "config", "version", "self-update"})
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitCodeSuccess},
		{name: "generic", err: errors.New("boom"), want: ExitCodeError},
		{name: "no current context", err: kofrctx.ErrNoCurrentContext, want: ExitCodeConfig},
		{name: "cluster not found", err: &kofrctx.ClusterNotFoundError{Name: "x"}, want: ExitCodeConfig},
		{name: "wrapped read error", err: fmt.Errorf("loading: %w", &kofrctx.ReadError{Path: "p", Err: errors.New("nope")}), want: ExitCodeConfig},
		{name: "no available host", err: &cluster.NoAvailableHostError{Cluster: "prod"}, want: ExitCodeUnreachable},
		{name: "transport", err: &connect.TransportError{Method: "GET", URL: "http://x", Err: errors.New("refused")}, want: ExitCodeUnreachable},
		{name: "server rejected", err: &connect.ServerRejectedError{StatusCode: 409, Body: "conflict"}, want: ExitCodeError},
		{name: "not found", err: &connect.NotFoundError{Connector: "x"}, want: ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Run("prints the error chain", func(t *testing.T) {
		var buf bytes.Buffer
		code := handleError(&buf, &kofrctx.ClusterNotFoundError{Name: "dummy"})
		assert.Equal(t, ExitCodeConfig, code)
		assert.Equal(t, "Error: Cluster with name \"dummy\" could not be found\n", buf.String())
	})

	t.Run("explains transport errors", func(t *testing.T) {
		var buf bytes.Buffer
		cause := &url.Error{Op: "Get", URL: "http://localhost:8083/connectors", Err: syscall.ECONNREFUSED}
		code := handleError(&buf, &connect.TransportError{Method: "GET", URL: "http://localhost:8083/connectors", Err: cause})
		assert.Equal(t, ExitCodeUnreachable, code)
		assert.True(t, strings.HasPrefix(buf.String(), "Error: "))
		assert.Contains(t, buf.String(), "worker is not running")
	})

	t.Run("explains every host of an unreachable cluster", func(t *testing.T) {
		var buf bytes.Buffer
		err := &cluster.NoAvailableHostError{
			Cluster: "prod",
			Hosts: []cluster.HostStatus{
				{
					Host:  "http://a:8083",
					State: cluster.Offline,
					Err:   &url.Error{Op: "Get", URL: "http://a:8083", Err: syscall.ECONNREFUSED},
				},
				{
					Host:  "http://b:8083",
					State: cluster.Offline,
					Err:   &cluster.UnexpectedStatusError{StatusCode: 502},
				},
			},
		}
		code := handleError(&buf, fmt.Errorf("connecting: %w", err))
		assert.Equal(t, ExitCodeUnreachable, code)

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, `Error: No available host found for cluster "prod"`), out)
		assert.Contains(t, out, "http://a:8083: Network error")
		assert.Contains(t, out, "worker is not running")
		assert.Contains(t, out, "http://b:8083: Unhealthy worker")
	})
}

func TestVersionCommand(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)
	SetVersion("1.2.3-test")

	res := runKofr(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "kofr version 1.2.3-test\n", res.stdout)
}

func TestSelfUpdateRefusesDevVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	for _, v := range []string{"dev", ""} {
		SetVersion(v)
		res := runKofr(t, "self-update")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "cannot self-update a development version")
	}
}

func TestSelfUpdateNeedsARepository(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)
	SetVersion("1.2.3")

	t.Run("unset", func(t *testing.T) {
		t.Setenv("KOFR_UPDATE_REPO", "")
		res := runKofr(t, "self-update")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "no release repository configured")
	})

	t.Run("malformed flag", func(t *testing.T) {
		res := runKofr(t, "self-update", "--update-repo", "kofr")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), `invalid release repository "kofr"`)
	})

	t.Run("malformed env", func(t *testing.T) {
		t.Setenv("KOFR_UPDATE_REPO", "a/b/c")
		res := runKofr(t, "self-update")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), `invalid release repository "a/b/c"`)
	})
}

func TestParseRepo(t *testing.T) {
	slug, err := parseRepo("acme/kofr")
	require.NoError(t, err)
	owner, repo, err := slug.GetSlug()
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "kofr", repo)

	for _, bad := range []string{"", "acme", "/kofr", "acme/", "a/b/c"} {
		_, err := parseRepo(bad)
		assert.Error(t, err, bad)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	res := runKofr(t, "--log-level", "chatty", "version")
	require.Error(t, res.err)
}

func TestInvalidOutputFormat(t *testing.T) {
	path := writeConfig(t, "clusters: []\n")
	res := runKofr(t, "--config-file", path, "config", "get-clusters", "-o", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unsupported output format")
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/kofr")

	got, err := expandHome("~/.kofr/other")
	require.NoError(t, err)
	assert.Equal(t, "/home/kofr/.kofr/other", got)

	got, err = expandHome("relative/config")
	require.NoError(t, err)
	assert.Equal(t, "relative/config", got)
}
