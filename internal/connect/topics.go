package connect

import (
	"context"
	"net/http"
)

// ListTopics returns the topics a connector has used since creation or the
// last reset.
func (c *Client) ListTopics(ctx context.Context, name ConnectorName) (Topics, error) {
	resp, err := c.do(ctx, http.MethodGet, c.connectorURL(name, "topics"), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, connectorNotFound(name)); err != nil {
		return nil, err
	}

	topics := Topics{}
	if err := decodeBody(resp, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// ResetTopics clears the active topic set of a connector.
func (c *Client) ResetTopics(ctx context.Context, name ConnectorName) error {
	resp, err := c.do(ctx, http.MethodPut, c.connectorURL(name, "topics", "reset"), nil)
	if err != nil {
		return err
	}
	return check(resp, connectorNotFound(name))
}
