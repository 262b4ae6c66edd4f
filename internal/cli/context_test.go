package cli

import (
	"errors"
	"testing"

	kofrctx "kofr/internal/context"
)

func testConfig() *kofrctx.Config {
	return &kofrctx.Config{
		CurrentCluster: "prod",
		Clusters: []kofrctx.ClusterContext{
			{Name: "prod", Hosts: []string{"https://prod.example.com:8083"}},
			{Name: "staging", Hosts: []string{"https://staging.example.com:8083"}},
		},
	}
}

func TestResolveCluster_Override(t *testing.T) {
	// The process environment is not consulted here.
	t.Setenv("KOFR_CLUSTER", "prod")

	cluster, err := ResolveCluster(testConfig(), "staging")
	if err != nil {
		t.Fatalf("ResolveCluster failed: %v", err)
	}
	if cluster.Hosts[0] != "https://staging.example.com:8083" {
		t.Errorf("expected staging host, got %q", cluster.Hosts[0])
	}

	cluster, err = ResolveCluster(testConfig(), "")
	if err != nil {
		t.Fatalf("ResolveCluster failed: %v", err)
	}
	if cluster.Name != "prod" {
		t.Errorf("expected 'prod', got %q", cluster.Name)
	}
}

func TestResolveCluster_CurrentCluster(t *testing.T) {
	config := testConfig()
	config.CurrentCluster = "staging"

	cluster, err := ResolveCluster(config, "")
	if err != nil {
		t.Fatalf("ResolveCluster failed: %v", err)
	}
	if cluster.Name != "staging" {
		t.Errorf("expected 'staging', got %q", cluster.Name)
	}
}

func TestResolveCluster_NotFound(t *testing.T) {
	_, err := ResolveCluster(testConfig(), "unknown")
	var notFound *kofrctx.ClusterNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ClusterNotFoundError, got %v", err)
	}
	if notFound.Name != "unknown" {
		t.Errorf("expected name 'unknown', got %q", notFound.Name)
	}
}

func TestResolveCluster_NoCurrentCluster(t *testing.T) {
	config := testConfig()
	config.CurrentCluster = ""
	if _, err := ResolveCluster(config, ""); !errors.Is(err, kofrctx.ErrNoCurrentContext) {
		t.Errorf("expected ErrNoCurrentContext, got %v", err)
	}
}
