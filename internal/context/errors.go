package context

import (
	"errors"
	"fmt"
)

// ErrNoCurrentContext is returned when no cluster has been selected.
var ErrNoCurrentContext = errors.New("No current context was set\n consider using command: kofr config use-cluster <CLUSTER>")

// ErrConfigLocked is returned when another kofr process is writing the config file.
var ErrConfigLocked = errors.New("unable to acquire config lock - another kofr process is writing")

// ReadError reports a configuration file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading config file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports a configuration file that is not a valid kofr document.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config file format %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ClusterNotFoundError is returned when a named cluster is not configured.
type ClusterNotFoundError struct {
	Name string
}

func (e *ClusterNotFoundError) Error() string {
	return fmt.Sprintf("Cluster with name %q could not be found", e.Name)
}

// ClusterExistsError is returned when adding a cluster whose name is taken.
type ClusterExistsError struct {
	Name string
}

func (e *ClusterExistsError) Error() string {
	return fmt.Sprintf("Cluster %q already exists.", e.Name)
}

// IsConfigError reports whether err originates from the configuration store.
func IsConfigError(err error) bool {
	var (
		readErr     *ReadError
		parseErr    *ParseError
		notFoundErr *ClusterNotFoundError
		existsErr   *ClusterExistsError
	)
	return errors.Is(err, ErrNoCurrentContext) ||
		errors.Is(err, ErrConfigLocked) ||
		errors.As(err, &readErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &notFoundErr) ||
		errors.As(err, &existsErr)
}
