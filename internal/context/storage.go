package context

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"kofr/pkg/logging"
)

const (
	// configFileName is the name of the kofr configuration file.
	configFileName = "config"
	// userConfigDir is the subdirectory under home for kofr configuration.
	userConfigDir = ".kofr"
	// lockSuffix names the lock file guarding writes to the config file.
	lockSuffix = ".lock"
)

// DefaultPath returns ~/.kofr/config.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// Load reads and parses the configuration file at path.
// A missing file is a ReadError; malformed YAML, a non-empty document
// without a clusters key or one failing validation is a ParseError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	config, err := parse(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	config.filePath = path
	return config, nil
}

// LoadOrCreate behaves like Load but writes an empty configuration first
// when the file does not exist yet.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		config := &Config{Clusters: []ClusterContext{}, filePath: path}
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}
	return Load(path)
}

func parse(data []byte) (*Config, error) {
	config := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		config.Clusters = []ClusterContext{}
		return config, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		if errors.Is(err, io.EOF) {
			config.Clusters = []ClusterContext{}
			return config, nil
		}
		return nil, err
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	if _, ok := keys["clusters"]; !ok {
		return nil, errors.New(`missing required key "clusters"`)
	}
	if config.Clusters == nil {
		config.Clusters = []ClusterContext{}
	}
	for _, cl := range config.Clusters {
		if err := ValidateCluster(cl); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// Save writes the whole configuration back to the file it was loaded from.
// It creates the configuration directory if it doesn't exist and holds a
// lock file next to the config while writing.
func (c *Config) Save() error {
	if c.filePath == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(c.filePath + lockSuffix)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire config lock: %w", err)
	}
	if !locked {
		return ErrConfigLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.Error("Config", err, "failed to release lock on %s", c.filePath)
		}
	}()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UseCluster makes name the current cluster and persists the change.
func (c *Config) UseCluster(name string) error {
	if !c.HasCluster(name) {
		return &ClusterNotFoundError{Name: name}
	}
	c.CurrentCluster = name
	return c.Save()
}

// AddCluster registers a new cluster, selects it as current and persists.
// Nothing is written when the name is already taken.
func (c *Config) AddCluster(name string, hosts []string) error {
	if c.HasCluster(name) {
		return &ClusterExistsError{Name: name}
	}
	cluster := ClusterContext{Name: name, Hosts: append([]string(nil), hosts...)}
	if err := ValidateCluster(cluster); err != nil {
		return err
	}

	c.Clusters = append(c.Clusters, cluster)
	c.CurrentCluster = name
	return c.Save()
}

// RemoveCluster deletes a cluster by name and persists.
func (c *Config) RemoveCluster(name string) error {
	if !c.removeCluster(name) {
		return &ClusterNotFoundError{Name: name}
	}
	return c.Save()
}
