// Package connecttest provides an in-memory Kafka Connect REST API for tests.
package connecttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// WorkerID is reported as the worker of every connector and task.
const WorkerID = "127.0.0.1:8083"

type connector struct {
	config map[string]string
	paused bool
	topics []string
}

// Server is a stateful fake Kafka Connect worker. Every connector owns
// exactly one task and is RUNNING unless paused.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	connectors     map[string]*connector
	clusterID      string
	restartCode    int
	restartBody    string
	verboseListing string
	requests       []string
	plugins        []map[string]string
}

// NewServer starts a fake worker. Call Close when done.
func NewServer() *Server {
	s := &Server{
		connectors: map[string]*connector{},
		clusterID:  "test-kafka-cluster",
		plugins: []map[string]string{
			{"class": "org.apache.kafka.connect.file.FileStreamSinkConnector", "type": "sink", "version": "3.7.0"},
			{"class": "org.apache.kafka.connect.file.FileStreamSourceConnector", "type": "source", "version": "3.7.0"},
		},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/", s.root)

	r.Get("/connectors", s.listConnectors)
	r.Post("/connectors", s.createConnector)
	r.Delete("/connectors/{name}", s.withConnector(s.deleteConnector))
	r.Get("/connectors/{name}/config", s.withConnector(s.getConfig))
	r.Put("/connectors/{name}/config", s.putConfig)
	r.Get("/connectors/{name}/status", s.withConnector(s.getStatus))
	r.Put("/connectors/{name}/pause", s.withConnector(s.setPaused(true)))
	r.Put("/connectors/{name}/resume", s.withConnector(s.setPaused(false)))
	r.Post("/connectors/{name}/restart", s.withConnector(s.restart))
	r.Get("/connectors/{name}/tasks", s.withConnector(s.listTasks))
	r.Get("/connectors/{name}/tasks/{id}/status", s.withConnector(s.taskStatus))
	r.Post("/connectors/{name}/tasks/{id}/restart", s.withConnector(s.restartTask))
	r.Get("/connectors/{name}/topics", s.withConnector(s.listTopics))
	r.Put("/connectors/{name}/topics/reset", s.withConnector(s.resetTopics))

	r.Get("/connector-plugins", s.listPlugins)
	r.Put("/connector-plugins/{class}/config/validate", s.validate)
	return r
}

// AddConnector registers a connector directly, bypassing the API.
func (s *Server) AddConnector(name string, config map[string]string, topics ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := map[string]string{"name": name}
	for k, v := range config {
		cfg[k] = v
	}
	s.connectors[name] = &connector{config: cfg, topics: topics}
}

// Config returns the stored config of a connector.
func (s *Server) Config(name string) (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connectors[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out, true
}

// Paused reports whether a connector is paused.
func (s *Server) Paused(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connectors[name]
	return ok && c.paused
}

// HasConnector reports whether a connector exists.
func (s *Server) HasConnector(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.connectors[name]
	return ok
}

// SetClusterID changes the kafka_cluster_id served on the root document.
// An empty id omits the field.
func (s *Server) SetClusterID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusterID = id
}

// SetRestartResponse forces the status code and body of connector restarts.
func (s *Server) SetRestartResponse(code int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restartCode = code
	s.restartBody = body
}

// SetVerboseListing overrides the body of GET /connectors?expand=status.
func (s *Server) SetVerboseListing(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verboseListing = raw
}

// Requests returns "METHOD /path?query" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := map[string]string{"version": "3.7.0", "commit": "2ae524ed625438c5"}
	if s.clusterID != "" {
		doc["kafka_cluster_id"] = s.clusterID
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listConnectors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Query().Get("expand") == "status" {
		if s.verboseListing != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s.verboseListing))
			return
		}
		out := map[string]any{}
		for name, c := range s.connectors {
			out[name] = map[string]any{"status": s.statusLocked(name, c)}
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	names := s.namesLocked()
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) createConnector(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string            `json:"name"`
		Config map[string]string `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, "Unrecognized request body: "+err.Error())
		return
	}
	if req.Config == nil {
		writeError(w, http.StatusBadRequest, "Connector config is required")
		return
	}
	if req.Name == "" {
		req.Name = req.Config["name"]
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Connector name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connectors[req.Name]; ok {
		writeError(w, http.StatusConflict, fmt.Sprintf("Connector %s already exists", req.Name))
		return
	}
	cfg := map[string]string{}
	for k, v := range req.Config {
		cfg[k] = v
	}
	cfg["name"] = req.Name
	c := &connector{config: cfg}
	s.connectors[req.Name] = c
	writeJSON(w, http.StatusCreated, s.infoLocked(req.Name, c))
}

func (s *Server) deleteConnector(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	delete(s.connectors, name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	writeJSON(w, http.StatusOK, c.config)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	name, ok := param(w, r, "name")
	if !ok {
		return
	}
	var cfg map[string]string
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Unrecognized request body: "+err.Error())
		return
	}
	if v, ok := cfg["name"]; ok && v != name {
		writeError(w, http.StatusBadRequest, "Connector name configuration ("+v+") doesn't match connector name in the URL ("+name+")")
		return
	}
	cfg["name"] = name

	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusOK
	c, exists := s.connectors[name]
	if !exists {
		c = &connector{}
		s.connectors[name] = c
		status = http.StatusCreated
	}
	c.config = cfg
	writeJSON(w, status, s.infoLocked(name, c))
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	writeJSON(w, http.StatusOK, s.statusLocked(name, c))
}

func (s *Server) setPaused(paused bool) connectorHandler {
	return func(w http.ResponseWriter, r *http.Request, name string, c *connector) {
		c.paused = paused
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) restart(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	if s.restartCode != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.restartCode)
		_, _ = w.Write([]byte(s.restartBody))
		return
	}
	q := r.URL.Query()
	if q.Get("includeTasks") == "true" || q.Get("onlyFailed") == "true" {
		status := s.statusLocked(name, c)
		status["connector"].(map[string]any)["state"] = "RESTARTING"
		writeJSON(w, http.StatusAccepted, status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	writeJSON(w, http.StatusOK, []map[string]any{{
		"id":     map[string]any{"connector": name, "task": 0},
		"config": c.config,
	}})
}

func (s *Server) taskStatus(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	if !s.validTask(w, r, name) {
		return
	}
	writeJSON(w, http.StatusOK, taskStatus(c))
}

func (s *Server) restartTask(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	if !s.validTask(w, r, name) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) validTask(w http.ResponseWriter, r *http.Request, name string) bool {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id != 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Task %s-%s not found", name, chi.URLParam(r, "id")))
		return false
	}
	return true
}

func (s *Server) listTopics(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	topics := c.topics
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{name: map[string]any{"topics": topics}})
}

func (s *Server) resetTopics(w http.ResponseWriter, r *http.Request, name string, c *connector) {
	c.topics = nil
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.plugins)
}

// validate reports an error for every empty config value.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	class, ok := param(w, r, "class")
	if !ok {
		return
	}
	var cfg map[string]string
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Unrecognized request body: "+err.Error())
		return
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errorCount := 0
	configs := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		v := cfg[k]
		errs := []string{}
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Sprintf("Missing required configuration %q which has no default value.", k))
			errorCount++
		}
		configs = append(configs, map[string]any{
			"definition": map[string]any{"name": k, "type": "STRING", "required": false, "default_value": nil, "importance": "HIGH", "documentation": "", "group": "Common"},
			"value":      map[string]any{"name": k, "value": v, "recommended_values": []string{}, "errors": errs, "visible": true},
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":        class,
		"error_count": errorCount,
		"groups":      []string{"Common"},
		"configs":     configs,
	})
}

type connectorHandler func(w http.ResponseWriter, r *http.Request, name string, c *connector)

// withConnector resolves {name} and answers 404 for unknown connectors.
// The handler runs with the server lock held.
func (s *Server) withConnector(h connectorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := param(w, r, "name")
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		c, exists := s.connectors[name]
		if !exists {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Connector %s not found", name))
			return
		}
		h(w, r, name, c)
	}
}

func (s *Server) namesLocked() []string {
	names := make([]string, 0, len(s.connectors))
	for name := range s.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) infoLocked(name string, c *connector) map[string]any {
	return map[string]any{
		"name":   name,
		"config": c.config,
		"tasks":  []map[string]any{{"connector": name, "task": 0}},
		"type":   connectorType(name, c.config),
	}
}

func (s *Server) statusLocked(name string, c *connector) map[string]any {
	state := "RUNNING"
	if c.paused {
		state = "PAUSED"
	}
	return map[string]any{
		"name":      name,
		"connector": map[string]any{"state": state, "worker_id": WorkerID},
		"tasks":     []map[string]any{taskStatus(c)},
		"type":      connectorType(name, c.config),
	}
}

func taskStatus(c *connector) map[string]any {
	state := "RUNNING"
	if c.paused {
		state = "PAUSED"
	}
	return map[string]any{"id": 0, "state": state, "worker_id": WorkerID}
}

func connectorType(name string, config map[string]string) string {
	if strings.Contains(strings.ToLower(name), "sink") || strings.Contains(strings.ToLower(config["connector.class"]), "sink") {
		return "sink"
	}
	return "source"
}

func param(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error_code": status, "message": message})
}
