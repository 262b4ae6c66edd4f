package connect

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DecodeVerboseListing turns the body of GET /connectors?expand=status into
// rows sorted by connector name. Every shape violation is reported as a
// DecodeError naming the offending path, e.g. "my-sink.status.connector.state".
func DecodeVerboseListing(body []byte) ([]VerboseConnector, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON: " + err.Error()}
	}

	var entries map[string]any
	switch v := root.(type) {
	case []any:
		if len(v) == 0 {
			return []VerboseConnector{}, nil
		}
		return nil, &DecodeError{Reason: "expected an object keyed by connector name, got a non-empty array"}
	case map[string]any:
		entries = v
	default:
		return nil, &DecodeError{Reason: "expected an object keyed by connector name, got " + kindOf(root)}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]VerboseConnector, 0, len(names))
	for _, name := range names {
		row, err := decodeVerboseEntry(name, entries[name])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeVerboseEntry(name string, entry any) (VerboseConnector, error) {
	row := VerboseConnector{Name: ConnectorName(name)}
	p := path{name}

	obj, err := asObject(entry, p)
	if err != nil {
		return row, err
	}
	status, err := objectField(obj, p, "status")
	if err != nil {
		return row, err
	}
	p = p.with("status")

	tasks, err := arrayField(status, p, "tasks")
	if err != nil {
		return row, err
	}
	row.Tasks = len(tasks)

	connector, err := objectField(status, p, "connector")
	if err != nil {
		return row, err
	}
	cp := p.with("connector")

	state, err := stringField(connector, cp, "state")
	if err != nil {
		return row, err
	}
	if row.State, err = ParseConnectorState(state); err != nil {
		return row, &DecodeError{Path: cp.with("state").String(), Reason: err.Error()}
	}

	if row.WorkerID, err = stringField(connector, cp, "worker_id"); err != nil {
		return row, err
	}

	typ, err := stringField(status, p, "type")
	if err != nil {
		return row, err
	}
	if row.Type, err = ParseConnectorType(typ); err != nil {
		return row, &DecodeError{Path: p.with("type").String(), Reason: err.Error()}
	}
	return row, nil
}

// DecodeConnectorStatus decodes the document served by
// /connectors/{name}/status and by accepted restarts. Missing keys and
// unknown states are reported with their path, e.g. "tasks.0.state".
func DecodeConnectorStatus(body []byte) (*ConnectorStatus, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return decodeConnectorStatus(obj, path{})
}

// DecodeTaskStatus decodes the document served by
// /connectors/{name}/tasks/{id}/status.
func DecodeTaskStatus(body []byte) (*TaskStatus, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	task, err := decodeTaskStatus(obj, path{})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, &DecodeError{Reason: "invalid JSON: " + err.Error()}
	}
	return asObject(root, path{})
}

func decodeConnectorStatus(obj map[string]any, p path) (*ConnectorStatus, error) {
	status := &ConnectorStatus{}

	name, err := stringField(obj, p, "name")
	if err != nil {
		return nil, err
	}
	status.Name = ConnectorName(name)

	connector, err := objectField(obj, p, "connector")
	if err != nil {
		return nil, err
	}
	cp := p.with("connector")
	state, err := stringField(connector, cp, "state")
	if err != nil {
		return nil, err
	}
	if status.Connector.State, err = ParseConnectorState(state); err != nil {
		return nil, &DecodeError{Path: cp.with("state").String(), Reason: err.Error()}
	}
	if status.Connector.WorkerID, err = stringField(connector, cp, "worker_id"); err != nil {
		return nil, err
	}
	if status.Connector.Trace, err = optionalStringField(connector, cp, "trace"); err != nil {
		return nil, err
	}

	tasks, err := arrayField(obj, p, "tasks")
	if err != nil {
		return nil, err
	}
	tp := p.with("tasks")
	status.Tasks = make([]TaskStatus, 0, len(tasks))
	for i, entry := range tasks {
		ep := tp.with(strconv.Itoa(i))
		taskObj, err := asObject(entry, ep)
		if err != nil {
			return nil, err
		}
		task, err := decodeTaskStatus(taskObj, ep)
		if err != nil {
			return nil, err
		}
		status.Tasks = append(status.Tasks, task)
	}

	typ, err := stringField(obj, p, "type")
	if err != nil {
		return nil, err
	}
	if status.Type, err = ParseConnectorType(typ); err != nil {
		return nil, &DecodeError{Path: p.with("type").String(), Reason: err.Error()}
	}
	return status, nil
}

func decodeTaskStatus(obj map[string]any, p path) (TaskStatus, error) {
	var task TaskStatus

	id, err := uintField(obj, p, "id")
	if err != nil {
		return task, err
	}
	task.ID = id

	state, err := stringField(obj, p, "state")
	if err != nil {
		return task, err
	}
	if task.State, err = ParseTaskState(state); err != nil {
		return task, &DecodeError{Path: p.with("state").String(), Reason: err.Error()}
	}
	if task.WorkerID, err = stringField(obj, p, "worker_id"); err != nil {
		return task, err
	}
	if task.Trace, err = optionalStringField(obj, p, "trace"); err != nil {
		return task, err
	}
	return task, nil
}

// path is a dotted JSON location used in decode errors.
type path []string

func (p path) with(key string) path {
	out := make(path, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}

func (p path) String() string {
	return strings.Join(p, ".")
}

func field(obj map[string]any, p path, key string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, &DecodeError{Path: p.with(key).String(), Reason: "missing key"}
	}
	return v, nil
}

func objectField(obj map[string]any, p path, key string) (map[string]any, error) {
	v, err := field(obj, p, key)
	if err != nil {
		return nil, err
	}
	return asObject(v, p.with(key))
}

func arrayField(obj map[string]any, p path, key string) ([]any, error) {
	v, err := field(obj, p, key)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Path: p.with(key).String(), Reason: "expected array, got " + kindOf(v)}
	}
	return arr, nil
}

func stringField(obj map[string]any, p path, key string) (string, error) {
	v, err := field(obj, p, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &DecodeError{Path: p.with(key).String(), Reason: "expected string, got " + kindOf(v)}
	}
	return s, nil
}

func optionalStringField(obj map[string]any, p path, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &DecodeError{Path: p.with(key).String(), Reason: "expected string, got " + kindOf(v)}
	}
	return s, nil
}

func uintField(obj map[string]any, p path, key string) (uint, error) {
	v, err := field(obj, p, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, &DecodeError{Path: p.with(key).String(), Reason: "expected number, got " + kindOf(v)}
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxUint32 {
		return 0, &DecodeError{Path: p.with(key).String(), Reason: "expected a non-negative integer"}
	}
	return uint(n), nil
}

func asObject(v any, p path) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: p.String(), Reason: "expected object, got " + kindOf(v)}
	}
	return obj, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
