package connect

import (
	"context"
	"net/http"
)

// ConnectorClassKey is the config entry naming the plugin class.
const ConnectorClassKey = "connector.class"

// ListPlugins returns the connector plugins installed on the worker.
func (c *Client) ListPlugins(ctx context.Context) ([]Plugin, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(pluginsPath), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}

	plugins := []Plugin{}
	if err := decodeBody(resp, &plugins); err != nil {
		return nil, err
	}
	return plugins, nil
}

// ValidateConfig checks config against a plugin. When class is empty it is
// read from the connector.class entry of config.
func (c *Client) ValidateConfig(ctx context.Context, class string, config ConnectorConfig) (*ConfigValidation, error) {
	if class == "" {
		class = config[ConnectorClassKey]
	}
	if class == "" {
		return nil, ErrMissingConnectorClass
	}

	payload := config.Clone()
	if _, ok := payload[ConnectorClassKey]; !ok {
		payload[ConnectorClassKey] = class
	}

	resp, err := c.do(ctx, http.MethodPut, c.endpoint(pluginsPath, class, "config", "validate"), payload)
	if err != nil {
		return nil, err
	}
	if err := check(resp, nil); err != nil {
		return nil, err
	}

	var result ConfigValidation
	if err := decodeBody(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
