package context

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClusterContext represents a named Kafka Connect cluster.
// All hosts are expected to serve the same cluster; they are tried in order.
type ClusterContext struct {
	// Name is the unique identifier for this cluster
	Name string `yaml:"name" json:"name" validate:"required"`
	// Hosts are the REST endpoints of the cluster's workers
	Hosts []string `yaml:"hosts" json:"hosts" validate:"required,min=1,dive,required,url"`
}

// Config represents the complete kofr configuration file.
type Config struct {
	// CurrentCluster is the name of the currently active cluster
	CurrentCluster string `yaml:"current-cluster,omitempty" json:"current-cluster,omitempty"`
	// Clusters is the list of all known clusters
	Clusters []ClusterContext `yaml:"clusters" json:"clusters" validate:"dive"`

	// filePath is where the config was loaded from; it is never persisted.
	filePath string
}

// ValidateCluster checks a cluster definition before it is stored.
func ValidateCluster(c ClusterContext) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid cluster %q: %s", c.Name, describeValidation(err))
	}
	return nil
}

// describeValidation flattens validator field errors into one line.
func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entry", field, fe.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid URL", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// FilePath returns the file the configuration is persisted to.
func (c *Config) FilePath() string {
	return c.filePath
}

// GetCluster returns the cluster with the given name, or nil if not found.
func (c *Config) GetCluster(name string) *ClusterContext {
	for i := range c.Clusters {
		if c.Clusters[i].Name == name {
			return &c.Clusters[i]
		}
	}
	return nil
}

// HasCluster returns true if a cluster with the given name exists.
func (c *Config) HasCluster(name string) bool {
	return c.GetCluster(name) != nil
}

// ClusterNames returns the names of all known clusters in file order.
func (c *Config) ClusterNames() []string {
	names := make([]string, len(c.Clusters))
	for i, cl := range c.Clusters {
		names[i] = cl.Name
	}
	return names
}

// CurrentContext resolves CurrentCluster against the known clusters.
func (c *Config) CurrentContext() (*ClusterContext, error) {
	if c.CurrentCluster == "" {
		return nil, ErrNoCurrentContext
	}
	cluster := c.GetCluster(c.CurrentCluster)
	if cluster == nil {
		return nil, &ClusterNotFoundError{Name: c.CurrentCluster}
	}
	return cluster, nil
}

// removeCluster drops the named cluster. CurrentCluster is left untouched.
func (c *Config) removeCluster(name string) bool {
	for i := range c.Clusters {
		if c.Clusters[i].Name == name {
			c.Clusters = append(c.Clusters[:i], c.Clusters[i+1:]...)
			return true
		}
	}
	return false
}
