package connect

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConnectorName identifies a connector on the cluster.
type ConnectorName string

// ConnectorConfig holds arbitrary connector settings.
type ConnectorConfig map[string]string

// Clone returns an independent copy of the config.
func (c ConnectorConfig) Clone() ConnectorConfig {
	out := make(ConnectorConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Equal reports whether both configs hold the same entries.
func (c ConnectorConfig) Equal(other ConnectorConfig) bool {
	if len(c) != len(other) {
		return false
	}
	for k, v := range c {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ConnectorType is sink or source. The wire form is lowercase; String
// renders it uppercase for display.
type ConnectorType string

const (
	ConnectorTypeSink   ConnectorType = "sink"
	ConnectorTypeSource ConnectorType = "source"
)

// ParseConnectorType accepts the exact lowercase tokens used by the API.
func ParseConnectorType(s string) (ConnectorType, error) {
	switch ConnectorType(s) {
	case ConnectorTypeSink, ConnectorTypeSource:
		return ConnectorType(s), nil
	}
	return "", fmt.Errorf("unknown connector type %q", s)
}

func (t ConnectorType) String() string {
	return strings.ToUpper(string(t))
}

func (t *ConnectorType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &DecodeError{Path: "type", Reason: "expected string"}
	}
	parsed, err := ParseConnectorType(s)
	if err != nil {
		return &DecodeError{Path: "type", Reason: err.Error()}
	}
	*t = parsed
	return nil
}

// ConnectorState is the lifecycle state of a connector.
type ConnectorState string

const (
	ConnectorRunning    ConnectorState = "RUNNING"
	ConnectorPaused     ConnectorState = "PAUSED"
	ConnectorFailed     ConnectorState = "FAILED"
	ConnectorUnassigned ConnectorState = "UNASSIGNED"
	ConnectorRestarting ConnectorState = "RESTARTING"
)

// ParseConnectorState accepts only the uppercase tokens the API emits.
func ParseConnectorState(s string) (ConnectorState, error) {
	switch ConnectorState(s) {
	case ConnectorRunning, ConnectorPaused, ConnectorFailed, ConnectorUnassigned, ConnectorRestarting:
		return ConnectorState(s), nil
	}
	return "", fmt.Errorf("unknown connector state %q", s)
}

func (s ConnectorState) String() string { return string(s) }

func (s *ConnectorState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Path: "state", Reason: "expected string"}
	}
	parsed, err := ParseConnectorState(raw)
	if err != nil {
		return &DecodeError{Path: "state", Reason: err.Error()}
	}
	*s = parsed
	return nil
}

// TaskState is the lifecycle state of a single task.
type TaskState string

const (
	TaskRunning    TaskState = "RUNNING"
	TaskFailed     TaskState = "FAILED"
	TaskPaused     TaskState = "PAUSED"
	TaskRestarting TaskState = "RESTARTING"
	TaskLost       TaskState = "LOST"
	TaskCreated    TaskState = "CREATED"
	TaskDead       TaskState = "DEAD"
)

// ParseTaskState accepts only the uppercase tokens the API emits.
func ParseTaskState(s string) (TaskState, error) {
	switch TaskState(s) {
	case TaskRunning, TaskFailed, TaskPaused, TaskRestarting, TaskLost, TaskCreated, TaskDead:
		return TaskState(s), nil
	}
	return "", fmt.Errorf("unknown task state %q", s)
}

func (s TaskState) String() string { return string(s) }

func (s *TaskState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Path: "state", Reason: "expected string"}
	}
	parsed, err := ParseTaskState(raw)
	if err != nil {
		return &DecodeError{Path: "state", Reason: err.Error()}
	}
	*s = parsed
	return nil
}

// Task identifies one task of a connector.
type Task struct {
	Connector ConnectorName `json:"connector"`
	Task      uint          `json:"task"`
}

// Connector is the object returned by create and config updates.
type Connector struct {
	Name   ConnectorName   `json:"name"`
	Config ConnectorConfig `json:"config"`
	Tasks  []Task          `json:"tasks"`
	Type   ConnectorType   `json:"type,omitempty"`
}

// CreateConnectorRequest is the payload of POST /connectors.
type CreateConnectorRequest struct {
	Name   ConnectorName   `json:"name"`
	Config ConnectorConfig `json:"config"`
}

// ConnectorStateInfo is the connector half of a status document.
type ConnectorStateInfo struct {
	State    ConnectorState `json:"state"`
	WorkerID string         `json:"worker_id"`
	Trace    string         `json:"trace,omitempty"`
}

// TaskStatus is the runtime state of one task.
type TaskStatus struct {
	ID       uint      `json:"id"`
	State    TaskState `json:"state"`
	WorkerID string    `json:"worker_id"`
	Trace    string    `json:"trace,omitempty"`
}

// ConnectorStatus is the document served by /connectors/{name}/status.
type ConnectorStatus struct {
	Name      ConnectorName      `json:"name"`
	Connector ConnectorStateInfo `json:"connector"`
	Tasks     []TaskStatus       `json:"tasks"`
	Type      ConnectorType      `json:"type"`
}

// DescribeConnector merges a status and a config for display.
type DescribeConnector struct {
	Name     ConnectorName   `json:"name"`
	Type     ConnectorType   `json:"type"`
	State    ConnectorState  `json:"state"`
	WorkerID string          `json:"worker_id"`
	Trace    string          `json:"trace,omitempty"`
	Config   ConnectorConfig `json:"config"`
	Tasks    []TaskStatus    `json:"tasks"`
}

// NewDescribeConnector builds the merged view.
func NewDescribeConnector(status *ConnectorStatus, config ConnectorConfig) *DescribeConnector {
	return &DescribeConnector{
		Name:     status.Name,
		Type:     status.Type,
		State:    status.Connector.State,
		WorkerID: status.Connector.WorkerID,
		Trace:    status.Connector.Trace,
		Config:   config,
		Tasks:    status.Tasks,
	}
}

// VerboseConnector is one row of the expanded listing.
type VerboseConnector struct {
	Name     ConnectorName  `json:"name"`
	State    ConnectorState `json:"state"`
	Tasks    int            `json:"tasks"`
	Type     ConnectorType  `json:"type"`
	WorkerID string         `json:"worker_id"`
}

// TopicList is the set of topics a connector has used.
type TopicList struct {
	Topics []string `json:"topics"`
}

// Topics maps connector names to their active topics.
type Topics map[ConnectorName]TopicList

// TaskInfo is one entry of /connectors/{name}/tasks.
type TaskInfo struct {
	ID     Task            `json:"id"`
	Config ConnectorConfig `json:"config"`
}

// Plugin is an installed connector plugin.
type Plugin struct {
	Class   string `json:"class"`
	Type    string `json:"type"`
	Version string `json:"version,omitempty"`
}

// ConfigValidation is the answer of the plugin validate endpoint.
type ConfigValidation struct {
	Name       string       `json:"name"`
	ErrorCount int          `json:"error_count"`
	Groups     []string     `json:"groups"`
	Configs    []ConfigInfo `json:"configs"`
}

// ConfigInfo pairs a config key definition with the validated value.
type ConfigInfo struct {
	Definition ConfigDefinition `json:"definition"`
	Value      ConfigValue      `json:"value"`
}

type ConfigDefinition struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Required      bool    `json:"required"`
	DefaultValue  *string `json:"default_value"`
	Importance    string  `json:"importance"`
	Documentation string  `json:"documentation"`
	Group         string  `json:"group"`
}

type ConfigValue struct {
	Name              string   `json:"name"`
	Value             *string  `json:"value"`
	RecommendedValues []string `json:"recommended_values"`
	Errors            []string `json:"errors"`
	Visible           bool     `json:"visible"`
}

// FieldErrors returns the validation errors keyed by config name, only for
// keys that have at least one error.
func (v *ConfigValidation) FieldErrors() map[string][]string {
	out := map[string][]string{}
	for _, c := range v.Configs {
		if len(c.Value.Errors) == 0 {
			continue
		}
		name := c.Value.Name
		if name == "" {
			name = c.Definition.Name
		}
		out[name] = append(out[name], c.Value.Errors...)
	}
	return out
}

// RestartKind tells how the cluster answered a restart request.
type RestartKind int

const (
	// RestartCompleted is a 200 or 204 answer.
	RestartCompleted RestartKind = iota
	// RestartAccepted is a 202 answer carrying the in-flight status.
	RestartAccepted
	// RestartInfo is any other status; the body is informational.
	RestartInfo
)

// RestartOutcome is the result of a connector restart.
type RestartOutcome struct {
	Kind       RestartKind
	StatusCode int
	Status     *ConnectorStatus
	Message    string
}
