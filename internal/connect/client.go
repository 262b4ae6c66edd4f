package connect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"kofr/pkg/logging"
)

// DefaultTimeout bounds every request so a hung worker cannot hang kofr.
const DefaultTimeout = 5 * time.Second

const (
	connectorsPath = "connectors"
	pluginsPath    = "connector-plugins"
)

// Client talks to the REST API of one Kafka Connect worker.
type Client struct {
	host       string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for host, e.g. "http://localhost:8083/".
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:       host,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the worker URL the client targets.
func (c *Client) Host() string {
	return c.host
}

// endpoint joins the host, a collection and escaped path segments. A slash
// is inserted after the host only when it does not already end with one.
func (c *Client) endpoint(collection string, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.host)
	if !strings.HasSuffix(c.host, "/") {
		b.WriteByte('/')
	}
	b.WriteString(collection)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) connectorURL(name ConnectorName, segments ...string) string {
	return c.endpoint(connectorsPath, append([]string{string(name)}, segments...)...)
}

type response struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any) (*response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("Connect", "%s %s failed after %s (request %s): %v", method, rawURL, time.Since(start), requestID, err)
		return nil, &TransportError{Method: method, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: rawURL, Err: fmt.Errorf("read response body: %w", err)}
	}
	logging.Debug("Connect", "%s %s -> %d in %s (request %s)", method, rawURL, resp.StatusCode, time.Since(start), requestID)

	return &response{URL: rawURL, StatusCode: resp.StatusCode, Body: respBody}, nil
}

// check maps a non-2xx response onto the error taxonomy. notFound is used
// for 404 answers; when nil a 404 is treated like any other rejection.
func check(resp *response, notFound error) error {
	if resp.ok() {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return notFound
	}
	return &ServerRejectedError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

func decodeBody(resp *response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return malformed(resp, err)
	}
	return nil
}

func malformed(resp *response, err error) error {
	merr := &MalformedResponseError{URL: resp.URL, Body: string(resp.Body), Err: err}
	var derr *DecodeError
	if errors.As(err, &derr) {
		merr.Field = derr.Path
	}
	return merr
}

func connectorNotFound(name ConnectorName) error {
	return &NotFoundError{Connector: name}
}

func taskNotFound(name ConnectorName, id uint) error {
	return &NotFoundError{Connector: name, Task: &id}
}
