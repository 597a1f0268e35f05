package httpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/loykin/connprobe/internal/failure"
)

// ClassifyTransport turns an error returned by the HTTP client (no response
// received) into a typed failure. Certificate problems are checked before
// timeouts so that a proxy re-signing traffic is reported as an SSL issue.
func ClassifyTransport(err error) *failure.Error {
	if err == nil {
		return nil
	}
	var fe *failure.Error
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case isTLSError(err):
		return failure.Wrap(failure.KindSSL, err, "SSL certificate error")
	case isTimeout(err):
		return failure.Wrap(failure.KindTimeout, err, "Request timeout")
	case isConnectionError(err):
		return failure.Wrap(failure.KindConnection, err, "Connection error")
	default:
		return failure.Wrap(failure.KindOther, err, "Request error")
	}
}

func isTLSError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
		recordHeader     tls.RecordHeaderError
		alert            tls.AlertError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostname) || errors.As(err, &invalid) ||
		errors.As(err, &verification) || errors.As(err, &recordHeader) || errors.As(err, &alert) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "x509:") || strings.Contains(msg, "tls:") ||
		strings.Contains(msg, "certificate")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isConnectionError(err error) bool {
	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, w := range []string{"proxyconnect", "proxy", "connection", "no such host", "eof"} {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
