package connect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kofr/internal/connect/connecttest"
)

func newFake(t *testing.T) (*connecttest.Server, *Client) {
	t.Helper()
	srv := connecttest.NewServer()
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL)
}

func TestClient_Endpoint(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://localhost:8083", "http://localhost:8083/connectors"},
		{"http://localhost:8083/", "http://localhost:8083/connectors"},
		{"https://proxy.example.com/kafka-connect/", "https://proxy.example.com/kafka-connect/connectors"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewClient(tt.host).endpoint(connectorsPath), tt.host)
	}

	c := NewClient("http://h/")
	assert.Equal(t, "http://h/connectors/my%20conn/config", c.connectorURL("my conn", "config"))
	assert.Equal(t, "http://h/connector-plugins/org.Foo/config/validate", c.endpoint(pluginsPath, "org.Foo", "config", "validate"))
}

func TestClient_ListVerboseScenario(t *testing.T) {
	srv, c := newFake(t)
	srv.AddConnector("sink-connector", map[string]string{
		"connector.class": "org.apache.kafka.connect.file.FileStreamSinkConnector",
		"tasks.max":       "10",
		"topics":          "orders",
	})

	rows, err := c.ListConnectorsVerbose(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ConnectorName("sink-connector"), rows[0].Name)
	assert.Equal(t, 1, rows[0].Tasks)
	assert.Equal(t, ConnectorRunning, rows[0].State)
	assert.Equal(t, ConnectorTypeSink, rows[0].Type)
	assert.Equal(t, connecttest.WorkerID, rows[0].WorkerID)

	assert.Contains(t, srv.Requests(), "GET /connectors?expand=status")
}

func TestClient_ListVerboseMalformed(t *testing.T) {
	srv, c := newFake(t)
	srv.SetVerboseListing(`{"x": {"status": {"connector": {"worker_id": "w"}, "tasks": [], "type": "sink"}}}`)

	_, err := c.ListConnectorsVerbose(context.Background())
	var merr *MalformedResponseError
	require.True(t, errors.As(err, &merr), "got %v", err)
	assert.Equal(t, "x.status.connector.state", merr.Field)
	assert.Contains(t, merr.Body, `"worker_id": "w"`)
	assert.Contains(t, err.Error(), "x.status.connector.state")
}

func TestClient_ListNamesAndCreate(t *testing.T) {
	srv, c := newFake(t)
	ctx := context.Background()

	names, err := c.ListConnectorNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	created, err := c.CreateConnector(ctx, CreateConnectorRequest{
		Name:   "orders-source",
		Config: ConnectorConfig{"connector.class": "FileStreamSource", "tasks.max": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, ConnectorName("orders-source"), created.Name)
	assert.Equal(t, ConnectorTypeSource, created.Type)
	assert.Equal(t, []Task{{Connector: "orders-source", Task: 0}}, created.Tasks)
	assert.True(t, srv.HasConnector("orders-source"))

	names, err = c.ListConnectorNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ConnectorName{"orders-source"}, names)

	_, err = c.CreateConnector(ctx, CreateConnectorRequest{Name: "orders-source", Config: ConnectorConfig{}})
	var rejected *ServerRejectedError
	require.True(t, errors.As(err, &rejected), "got %v", err)
	assert.Equal(t, http.StatusConflict, rejected.StatusCode)
	assert.Contains(t, err.Error(), "Connector orders-source already exists")
}

func TestClient_ConfigNotFoundVsTransport(t *testing.T) {
	_, c := newFake(t)

	_, err := c.GetConnectorConfig(context.Background(), "missing")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, ConnectorName("missing"), notFound.Connector)
	assert.True(t, errors.Is(err, ErrNotFound))

	down := httptest.NewServer(http.NotFoundHandler())
	addr := down.URL
	down.Close()

	_, err = NewClient(addr).GetConnectorConfig(context.Background(), "missing")
	var transport *TransportError
	require.True(t, errors.As(err, &transport), "got %v", err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_DescribeAndPut(t *testing.T) {
	srv, c := newFake(t)
	ctx := context.Background()
	srv.AddConnector("orders", map[string]string{"tasks.max": "1"})

	d, err := c.Describe(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, ConnectorRunning, d.State)
	assert.Equal(t, "1", d.Config["tasks.max"])
	require.Len(t, d.Tasks, 1)
	assert.Equal(t, TaskRunning, d.Tasks[0].State)

	_, err = c.Describe(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := c.PutConnectorConfig(ctx, "orders", ConnectorConfig{"name": "orders", "tasks.max": "4"})
	require.NoError(t, err)
	assert.Equal(t, "4", updated.Config["tasks.max"])

	cfg, ok := srv.Config("orders")
	require.True(t, ok)
	assert.Equal(t, "4", cfg["tasks.max"])

	_, err = c.PutConnectorConfig(ctx, "orders", ConnectorConfig{"name": "other"})
	var rejected *ServerRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
}

func TestClient_Lifecycle(t *testing.T) {
	srv, c := newFake(t)
	ctx := context.Background()
	srv.AddConnector("orders", nil)

	require.NoError(t, c.PauseConnector(ctx, "orders"))
	assert.True(t, srv.Paused("orders"))

	status, err := c.GetConnectorStatus(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, ConnectorPaused, status.Connector.State)

	require.NoError(t, c.ResumeConnector(ctx, "orders"))
	assert.False(t, srv.Paused("orders"))

	require.NoError(t, c.DeleteConnector(ctx, "orders"))
	assert.False(t, srv.HasConnector("orders"))

	err = c.DeleteConnector(ctx, "orders")
	var rejected *ServerRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Contains(t, rejected.Body, "Connector orders not found")
}

func TestClient_RestartOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("202 returns status", func(t *testing.T) {
		srv, c := newFake(t)
		srv.AddConnector("orders", nil)

		out, err := c.RestartConnector(ctx, "orders", true, false)
		require.NoError(t, err)
		assert.Equal(t, RestartAccepted, out.Kind)
		require.NotNil(t, out.Status)
		assert.Equal(t, ConnectorRestarting, out.Status.Connector.State)
		assert.Contains(t, srv.Requests(), "POST /connectors/orders/restart?includeTasks=true&onlyFailed=false")
	})

	for _, code := range []int{http.StatusOK, http.StatusNoContent} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			srv, c := newFake(t)
			srv.AddConnector("orders", nil)
			srv.SetRestartResponse(code, "")

			out, err := c.RestartConnector(ctx, "orders", false, false)
			require.NoError(t, err)
			assert.Equal(t, RestartCompleted, out.Kind)
			assert.Nil(t, out.Status)
		})
	}

	t.Run("other status is informational", func(t *testing.T) {
		srv, c := newFake(t)
		srv.AddConnector("orders", nil)
		srv.SetRestartResponse(http.StatusConflict, `{"error_code":409,"message":"rebalance in progress"}`)

		out, err := c.RestartConnector(ctx, "orders", false, true)
		require.NoError(t, err)
		assert.Equal(t, RestartInfo, out.Kind)
		assert.Equal(t, http.StatusConflict, out.StatusCode)
		assert.Equal(t, `{"error_code":409,"message":"rebalance in progress"}`, out.Message)
	})
}

func TestClient_Tasks(t *testing.T) {
	srv, c := newFake(t)
	ctx := context.Background()
	srv.AddConnector("orders", map[string]string{"tasks.max": "1"})

	tasks, err := c.ListTasks(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, Task{Connector: "orders", Task: 0}, tasks[0].ID)
	assert.Equal(t, "1", tasks[0].Config["tasks.max"])

	status, err := c.GetTaskStatus(ctx, "orders", 0)
	require.NoError(t, err)
	assert.Equal(t, TaskRunning, status.State)

	_, err = c.GetTaskStatus(ctx, "orders", 5)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.NotNil(t, notFound.Task)
	assert.Equal(t, uint(5), *notFound.Task)

	require.NoError(t, c.RestartTask(ctx, "orders", 0))
	assert.True(t, errors.Is(c.RestartTask(ctx, "ghost", 0), ErrNotFound))

	_, err = c.ListTasks(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_Topics(t *testing.T) {
	srv, c := newFake(t)
	ctx := context.Background()
	srv.AddConnector("orders", nil, "orders", "orders-dlq")

	topics, err := c.ListTopics(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "orders-dlq"}, topics["orders"].Topics)

	require.NoError(t, c.ResetTopics(ctx, "orders"))
	topics, err = c.ListTopics(ctx, "orders")
	require.NoError(t, err)
	assert.Empty(t, topics["orders"].Topics)

	assert.True(t, errors.Is(c.ResetTopics(ctx, "ghost"), ErrNotFound))
}

func TestClient_Plugins(t *testing.T) {
	_, c := newFake(t)
	ctx := context.Background()

	plugins, err := c.ListPlugins(ctx)
	require.NoError(t, err)
	require.Len(t, plugins, 2)
	assert.Equal(t, "sink", plugins[0].Type)

	_, err = c.ValidateConfig(ctx, "", ConnectorConfig{"topics": "x"})
	assert.ErrorIs(t, err, ErrMissingConnectorClass)

	result, err := c.ValidateConfig(ctx, "", ConnectorConfig{
		"connector.class": "org.apache.kafka.connect.file.FileStreamSinkConnector",
		"topics":          "",
	})
	require.NoError(t, err)
	assert.Equal(t, "org.apache.kafka.connect.file.FileStreamSinkConnector", result.Name)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Contains(t, result.FieldErrors(), "topics")

	result, err = c.ValidateConfig(ctx, "FileStreamSource", ConnectorConfig{"file": "/tmp/in"})
	require.NoError(t, err)
	assert.Equal(t, "FileStreamSource", result.Name)
	assert.Zero(t, result.ErrorCount)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"a","connector":{"state":"SLEEPING","worker_id":"w"},"tasks":[],"type":"sink"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetConnectorStatus(context.Background(), "a")
	var merr *MalformedResponseError
	require.True(t, errors.As(err, &merr), "got %v", err)
	assert.Equal(t, "connector.state", merr.Field)
	assert.True(t, strings.HasSuffix(merr.URL, "/connectors/a/status"))
}

func TestClient_StatusRequiresEveryKey(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		wantField string
	}{
		{
			name:      "connector status without connector",
			path:      "/connectors/a/status",
			body:      `{"name":"a","tasks":[],"type":"sink"}`,
			wantField: "connector",
		},
		{
			name:      "connector status with unknown task state",
			path:      "/connectors/a/status",
			body:      `{"name":"a","connector":{"state":"RUNNING","worker_id":"w"},"tasks":[{"id":0,"state":"BOGUS","worker_id":"w"}],"type":"sink"}`,
			wantField: "tasks.0.state",
		},
		{
			name:      "connector status with null type",
			path:      "/connectors/a/status",
			body:      `{"name":"a","connector":{"state":"RUNNING","worker_id":"w"},"tasks":[],"type":null}`,
			wantField: "type",
		},
		{
			name:      "task status without worker",
			path:      "/connectors/a/tasks/0/status",
			body:      `{"id":0,"state":"RUNNING"}`,
			wantField: "worker_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			var err error
			if strings.Contains(tt.path, "/tasks/") {
				_, err = c.GetTaskStatus(context.Background(), "a", 0)
			} else {
				_, err = c.GetConnectorStatus(context.Background(), "a")
			}
			var merr *MalformedResponseError
			require.True(t, errors.As(err, &merr), "got %v", err)
			assert.Equal(t, tt.wantField, merr.Field)
			assert.True(t, strings.HasSuffix(merr.URL, tt.path), merr.URL)
		})
	}
}

func TestClient_RestartAcceptedMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"name":"a","connector":{"state":"RESTARTING"},"tasks":[],"type":"sink"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RestartConnector(context.Background(), "a", false, false)
	var merr *MalformedResponseError
	require.True(t, errors.As(err, &merr), "got %v", err)
	assert.Equal(t, "connector.worker_id", merr.Field)
}

func TestClient_RequestHeaders(t *testing.T) {
	var gotID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListConnectorNames(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotID, 36)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).ListConnectorNames(context.Background())
	var transport *TransportError
	assert.True(t, errors.As(err, &transport), "got %v", err)
}

func TestClient_WithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["a"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
	assert.Equal(t, srv.URL+"/", c.Host())

	names, err := c.ListConnectorNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ConnectorName{"a"}, names)
}
