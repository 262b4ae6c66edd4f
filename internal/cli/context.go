package cli

import (
	kofrctx "kofr/internal/context"
)

// ResolveCluster picks the cluster a command runs against. override is the
// value of --cluster, which the command layer already falls back to
// KOFR_CLUSTER for; when it is empty the config's current-cluster is used.
//
// A named cluster that is not configured is a ClusterNotFoundError.
func ResolveCluster(config *kofrctx.Config, override string) (*kofrctx.ClusterContext, error) {
	if override == "" {
		return config.CurrentContext()
	}

	cluster := config.GetCluster(override)
	if cluster == nil {
		return nil, &kofrctx.ClusterNotFoundError{Name: override}
	}
	return cluster, nil
}
