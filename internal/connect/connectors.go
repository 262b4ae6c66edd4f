package connect

import (
	"context"
	"net/http"
	"strconv"
)

// ListConnectorNames returns the names of all connectors.
func (c *Client) ListConnectorNames(ctx context.Context) ([]ConnectorName, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(connectorsPath), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}

	names := []ConnectorName{}
	if err := decodeBody(resp, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ListConnectorsVerbose returns one row per connector using the expanded
// status listing.
func (c *Client) ListConnectorsVerbose(ctx context.Context) ([]VerboseConnector, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(connectorsPath)+"?expand=status", nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}

	rows, err := DecodeVerboseListing(resp.Body)
	if err != nil {
		return nil, malformed(resp, err)
	}
	return rows, nil
}

// CreateConnector submits a new connector. Rejections carry the server's
// message verbatim.
func (c *Client) CreateConnector(ctx context.Context, req CreateConnectorRequest) (*Connector, error) {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint(connectorsPath), req)
	if err != nil {
		return nil, err
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}

	var created Connector
	if err := decodeBody(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetConnectorConfig fetches the config of one connector.
func (c *Client) GetConnectorConfig(ctx context.Context, name ConnectorName) (ConnectorConfig, error) {
	resp, err := c.do(ctx, http.MethodGet, c.connectorURL(name, "config"), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, connectorNotFound(name)); err != nil {
		return nil, err
	}

	config := ConnectorConfig{}
	if err := decodeBody(resp, &config); err != nil {
		return nil, err
	}
	return config, nil
}

// GetConnectorStatus fetches the runtime status of one connector.
func (c *Client) GetConnectorStatus(ctx context.Context, name ConnectorName) (*ConnectorStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, c.connectorURL(name, "status"), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, connectorNotFound(name)); err != nil {
		return nil, err
	}

	status, err := DecodeConnectorStatus(resp.Body)
	if err != nil {
		return nil, malformed(resp, err)
	}
	return status, nil
}

// Describe combines status and config of one connector.
func (c *Client) Describe(ctx context.Context, name ConnectorName) (*DescribeConnector, error) {
	status, err := c.GetConnectorStatus(ctx, name)
	if err != nil {
		return nil, err
	}
	config, err := c.GetConnectorConfig(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewDescribeConnector(status, config), nil
}

// PutConnectorConfig replaces the whole config of a connector.
func (c *Client) PutConnectorConfig(ctx context.Context, name ConnectorName, config ConnectorConfig) (*Connector, error) {
	resp, err := c.do(ctx, http.MethodPut, c.connectorURL(name, "config"), config)
	if err != nil {
		return nil, err
	}
	if err := check(resp, connectorNotFound(name)); err != nil {
		return nil, err
	}

	var updated Connector
	if err := decodeBody(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PauseConnector suspends a connector and its tasks.
func (c *Client) PauseConnector(ctx context.Context, name ConnectorName) error {
	return c.lifecycle(ctx, http.MethodPut, c.connectorURL(name, "pause"))
}

// ResumeConnector resumes a paused connector.
func (c *Client) ResumeConnector(ctx context.Context, name ConnectorName) error {
	return c.lifecycle(ctx, http.MethodPut, c.connectorURL(name, "resume"))
}

// DeleteConnector removes a connector from the cluster.
func (c *Client) DeleteConnector(ctx context.Context, name ConnectorName) error {
	return c.lifecycle(ctx, http.MethodDelete, c.connectorURL(name))
}

func (c *Client) lifecycle(ctx context.Context, method, rawURL string) error {
	resp, err := c.do(ctx, method, rawURL, nil)
	if err != nil {
		return err
	}
	return check(resp, nil)
}

// RestartConnector asks the cluster to restart a connector. The status
// code decides the outcome: 200/204 completed, 202 accepted with the
// in-flight status, anything else informational with the raw body.
func (c *Client) RestartConnector(ctx context.Context, name ConnectorName, includeTasks, onlyFailed bool) (*RestartOutcome, error) {
	rawURL := c.connectorURL(name, "restart") +
		"?includeTasks=" + strconv.FormatBool(includeTasks) +
		"&onlyFailed=" + strconv.FormatBool(onlyFailed)

	resp, err := c.do(ctx, http.MethodPost, rawURL, nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return &RestartOutcome{Kind: RestartCompleted, StatusCode: resp.StatusCode}, nil
	case http.StatusAccepted:
		status, err := DecodeConnectorStatus(resp.Body)
		if err != nil {
			return nil, malformed(resp, err)
		}
		return &RestartOutcome{Kind: RestartAccepted, StatusCode: resp.StatusCode, Status: status}, nil
	default:
		return &RestartOutcome{Kind: RestartInfo, StatusCode: resp.StatusCode, Message: string(resp.Body)}, nil
	}
}
