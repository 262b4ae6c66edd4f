// Package context provides kubectl-style cluster context management for kofr.
//
// Users register named Kafka Connect clusters, each backed by one or more
// equivalent REST hosts, and select one of them as the current context so
// connector commands do not need a host on every invocation.
//
// # Configuration File
//
// Clusters are stored in ~/.kofr/config with the following schema:
//
//	current-cluster: production
//	clusters:
//	  - name: local
//	    hosts:
//	      - http://localhost:8083/
//	  - name: production
//	    hosts:
//	      - https://connect-1.example.com
//	      - https://connect-2.example.com
//
// # Lifecycle
//
// The file is loaded once per process. Every mutation (UseCluster, AddCluster,
// RemoveCluster) is applied in memory and immediately written back as a whole
// document to the file it was loaded from.
//
// Removing the current cluster does not clear current-cluster; the dangling
// name surfaces as a ClusterNotFoundError on the next CurrentContext call.
//
// # Concurrency
//
// A Config is owned by a single invocation and is not safe for concurrent
// use. Concurrent kofr processes editing the same file are not coordinated.
package context
