package connect

import (
	"context"
	"net/http"
	"strconv"
)

// ListTasks returns the task ids and configs of a connector.
func (c *Client) ListTasks(ctx context.Context, name ConnectorName) ([]TaskInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, c.connectorURL(name, "tasks"), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, connectorNotFound(name)); err != nil {
		return nil, err
	}

	tasks := []TaskInfo{}
	if err := decodeBody(resp, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTaskStatus returns the status of one task.
func (c *Client) GetTaskStatus(ctx context.Context, name ConnectorName, id uint) (*TaskStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, c.taskURL(name, id, "status"), nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp, taskNotFound(name, id)); err != nil {
		return nil, err
	}

	status, err := DecodeTaskStatus(resp.Body)
	if err != nil {
		return nil, malformed(resp, err)
	}
	return status, nil
}

// RestartTask restarts a single task.
func (c *Client) RestartTask(ctx context.Context, name ConnectorName, id uint) error {
	resp, err := c.do(ctx, http.MethodPost, c.taskURL(name, id, "restart"), nil)
	if err != nil {
		return err
	}
	return check(resp, taskNotFound(name, id))
}

func (c *Client) taskURL(name ConnectorName, id uint, action string) string {
	return c.connectorURL(name, "tasks", strconv.FormatUint(uint64(id), 10), action)
}
