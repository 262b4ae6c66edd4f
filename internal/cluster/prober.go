// Package cluster checks the liveness of Kafka Connect hosts and picks a
// usable host out of a cluster context.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	kofrctx "kofr/internal/context"
	"kofr/pkg/logging"
)

// DefaultTimeout bounds a single liveness probe.
const DefaultTimeout = 5 * time.Second

// HostState is the liveness of one host.
type HostState string

const (
	Online  HostState = "Online"
	Offline HostState = "Offline"
)

// HostStatus is the probe result for one host.
type HostStatus struct {
	Host      string    `json:"host"`
	State     HostState `json:"state"`
	ClusterID string    `json:"kafka_cluster_id,omitempty"`
	// Err is the cause of an Offline classification.
	Err error `json:"-"`
}

// NoAvailableHostError is returned when no host of a cluster answers.
// Hosts holds the failed probe of every host, in list order.
type NoAvailableHostError struct {
	Cluster string
	Hosts   []HostStatus
}

func (e *NoAvailableHostError) Error() string {
	return fmt.Sprintf("No available host found for cluster %q", e.Cluster)
}

// Unwrap returns the probe failures so errors.Is and errors.As see them.
func (e *NoAvailableHostError) Unwrap() []error {
	errs := make([]error, 0, len(e.Hosts))
	for _, h := range e.Hosts {
		if h.Err != nil {
			errs = append(errs, h.Err)
		}
	}
	return errs
}

// UnexpectedStatusError is the cause of an Offline host that answered
// with a non-2xx status.
type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Prober issues liveness probes against worker root documents.
type Prober struct {
	httpClient *http.Client
}

// NewProber creates a Prober with the given per-probe timeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{httpClient: &http.Client{Timeout: timeout}}
}

// Probe classifies a single host. Any failure, including a non-2xx answer,
// is folded into Offline.
func (p *Prober) Probe(ctx context.Context, host string) HostStatus {
	status := HostStatus{Host: host, State: Offline}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host, nil)
	if err != nil {
		status.Err = err
		return status
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logging.Debug("Prober", "host %s offline: %v", host, err)
		status.Err = err
		return status
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status.Err = &UnexpectedStatusError{StatusCode: resp.StatusCode}
		logging.Debug("Prober", "host %s offline: %v", host, status.Err)
		return status
	}

	status.State = Online
	status.ClusterID = clusterIDFrom(resp.Body)
	return status
}

// clusterIDFrom reads kafka_cluster_id from a root document. A missing or
// unreadable id is not an error.
func clusterIDFrom(body io.Reader) string {
	var doc struct {
		KafkaClusterID string `json:"kafka_cluster_id"`
	}
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return ""
	}
	return doc.KafkaClusterID
}

// ProbeAll probes every host concurrently. Results keep the order of hosts.
func (p *Prober) ProbeAll(ctx context.Context, hosts []string) []HostStatus {
	results := make([]HostStatus, len(hosts))

	g, gctx := errgroup.WithContext(ctx)
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			results[i] = p.Probe(gctx, host)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// AvailableHost returns the first host of the cluster, in list order, that
// answers a probe.
func (p *Prober) AvailableHost(ctx context.Context, cluster *kofrctx.ClusterContext) (string, error) {
	failed := make([]HostStatus, 0, len(cluster.Hosts))
	for _, host := range cluster.Hosts {
		status := p.Probe(ctx, host)
		if status.State == Online {
			if len(failed) > 0 {
				logging.Info("Prober", "host %s of cluster %s is available after %d offline host(s)", host, cluster.Name, len(failed))
			}
			return host, nil
		}
		failed = append(failed, status)
	}
	return "", &NoAvailableHostError{Cluster: cluster.Name, Hosts: failed}
}

// ClusterID returns the identity reported by the first online host, if any.
func ClusterID(statuses []HostStatus) string {
	for _, s := range statuses {
		if s.State == Online && s.ClusterID != "" {
			return s.ClusterID
		}
	}
	return ""
}
