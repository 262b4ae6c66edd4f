package connect

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrMissingConnectorClass is returned by ValidateConfig when no plugin class
// was given and the config has no connector.class entry.
var ErrMissingConnectorClass = errors.New("connector class is required: pass it explicitly or set connector.class in the config")

// TransportError means the host could not be reached at all
// (DNS, refused connection, TLS, timeout).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not reach %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError is an explicit 404 for a named connector or one of its tasks.
type NotFoundError struct {
	Connector ConnectorName
	// Task is set when the missing entity is a task of Connector.
	Task *uint
}

func (e *NotFoundError) Error() string {
	if e.Task != nil {
		return fmt.Sprintf("No task with id: %d was found for connector: %s", *e.Task, e.Connector)
	}
	return fmt.Sprintf("No connector with name: %s was found", e.Connector)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ServerRejectedError is any other non-2xx answer. Body is the server's
// response verbatim.
type ServerRejectedError struct {
	StatusCode int
	Body       string
}

func (e *ServerRejectedError) Error() string {
	return e.Body
}

// MalformedResponseError is a 2xx answer whose body does not have the
// expected shape.
type MalformedResponseError struct {
	URL   string
	Field string
	Body  string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("could not decode response from %s at %s: %v\nresponse body: %s", e.URL, e.Field, e.Err, e.Body)
	}
	return fmt.Sprintf("could not decode response from %s: %v\nresponse body: %s", e.URL, e.Err, e.Body)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// DecodeError reports a JSON shape violation at a dotted field path.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
