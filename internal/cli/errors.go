package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"kofr/internal/cluster"
	"kofr/internal/connect"
)

// ConnectionErrorType categorizes why a host could not be used.
type ConnectionErrorType int

const (
	ConnectionErrorUnknown ConnectionErrorType = iota
	ConnectionErrorTLS
	ConnectionErrorNetwork
	ConnectionErrorTimeout
	ConnectionErrorDNS
	// ConnectionErrorStatus is a host that answered, but not with a 2xx.
	ConnectionErrorStatus
)

func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	case ConnectionErrorStatus:
		return "Unhealthy worker"
	default:
		return "Connection error"
	}
}

// hint suggests what to check for a failure of this type.
func (t ConnectionErrorType) hint() string {
	switch t {
	case ConnectionErrorTLS:
		return "the worker's certificate is not trusted or does not match the host name"
	case ConnectionErrorNetwork:
		return "the Kafka Connect worker is not running, or the host or port is wrong"
	case ConnectionErrorTimeout:
		return "the worker did not answer in time, try a larger --timeout"
	case ConnectionErrorDNS:
		return "the host name does not resolve, check it with: kofr config get-clusters"
	case ConnectionErrorStatus:
		return "the host answered but is not a healthy Kafka Connect worker"
	default:
		return ""
	}
}

// ConnectionError is a failure to reach one Kafka Connect host.
type ConnectionError struct {
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

// ClassifyConnectionError sorts err into a ConnectionErrorType. It returns
// nil for a nil error.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}
	return &ConnectionError{Endpoint: endpoint, Type: classify(err), Reason: err}
}

func classify(err error) ConnectionErrorType {
	var (
		verifyErr    *tls.CertificateVerificationError
		authorityErr x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidErr   x509.CertificateInvalidError
		dnsErr       *net.DNSError
		statusErr    *cluster.UnexpectedStatusError
		netErr       net.Error
		opErr        *net.OpError
	)

	switch {
	case errors.As(err, &verifyErr), errors.As(err, &authorityErr),
		errors.As(err, &hostnameErr), errors.As(err, &invalidErr):
		return ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		return ConnectionErrorDNS
	case errors.As(err, &statusErr):
		return ConnectionErrorStatus
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return ConnectionErrorTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH),
		errors.As(err, &opErr):
		return ConnectionErrorNetwork
	default:
		return ConnectionErrorUnknown
	}
}

func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("%s for %s: %v", e.Type, e.Endpoint, e.Reason)
	if hint := e.Type.hint(); hint != "" {
		msg += "\n\nPossible cause: " + hint
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClusterUnreachableError explains a cluster none of whose hosts answered,
// with one classified cause per host.
type ClusterUnreachableError struct {
	Err   *cluster.NoAvailableHostError
	Hosts []*ConnectionError
}

func (e *ClusterUnreachableError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	for _, h := range e.Hosts {
		fmt.Fprintf(&b, "\n  %s: %s (%v)", h.Endpoint, h.Type, h.Reason)
		if hint := h.Type.hint(); hint != "" {
			fmt.Fprintf(&b, "\n    %s", hint)
		}
	}
	return b.String()
}

func (e *ClusterUnreachableError) Unwrap() error {
	return e.Err
}

// ExplainError attaches classified causes to errors that mean a cluster
// could not be reached: failed requests and clusters without an available
// host. Other errors are returned unchanged.
func ExplainError(err error) error {
	var noHost *cluster.NoAvailableHostError
	if errors.As(err, &noHost) {
		explained := &ClusterUnreachableError{Err: noHost}
		for _, h := range noHost.Hosts {
			if c := ClassifyConnectionError(h.Err, h.Host); c != nil {
				explained.Hosts = append(explained.Hosts, c)
			}
		}
		return explained
	}

	var terr *connect.TransportError
	if errors.As(err, &terr) {
		return ClassifyConnectionError(terr.Err, terr.URL)
	}
	return err
}
