package httpc

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/util"
)

// Httpc describes how outgoing requests are made: TLS trust, timeout and proxy.
type Httpc struct {
	TlsConfig *tls.Config
	Timeout   time.Duration
	// Proxy overrides HTTPS_PROXY/HTTP_PROXY when set.
	Proxy     string
	UserAgent string
}

// New returns a resty.Client configured according to the receiver's settings.
// Retries are disabled; the timeout defaults to constants.DefaultTimeout.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	c.SetRetryCount(0)
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	c.SetTimeout(timeout)
	if ua, ok := util.TrimEmptyCheck(h.UserAgent); ok {
		c.SetHeader("User-Agent", ua)
	}
	if p, ok := util.TrimEmptyCheck(h.Proxy); ok {
		c.SetProxy(p)
	}
	if h.TlsConfig != nil {
		c.SetTLSClientConfig(h.TlsConfig)
	}
	return c
}

// TLSOptions are the operator-facing TLS switches.
type TLSOptions struct {
	Insecure      bool
	CACertFile    string
	MinTLSVersion string
}

// ParseTLSVersion converts a TLS version string to the corresponding crypto/tls constant.
// Supports various formats: "1.0", "10", "tls1.0", "tls10", etc.
// Returns 0 if the version string is not recognized.
func ParseTLSVersion(version string) uint16 {
	switch util.TrimAndLower(version) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// BuildTLSConfig returns nil when no option is set so the client keeps Go's defaults.
func BuildTLSConfig(o TLSOptions) (*tls.Config, error) {
	minVersion := uint16(0)
	if v, ok := util.TrimEmptyCheck(o.MinTLSVersion); ok {
		minVersion = ParseTLSVersion(v)
		if minVersion == 0 {
			return nil, fmt.Errorf("invalid min TLS version: %s (valid: 1.0, 1.1, 1.2, 1.3)", o.MinTLSVersion)
		}
	}
	caFile, _ := util.TrimEmptyCheck(o.CACertFile)
	if !o.Insecure && caFile == "" && minVersion == 0 {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if minVersion != 0 {
		cfg.MinVersion = minVersion
	}
	if caFile != "" {
		// #nosec G304 -- CA bundle path is provided by the operator
		pem, err := os.ReadFile(filepath.Clean(caFile))
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA bundle %s", caFile)
		}
		cfg.RootCAs = pool
	}
	if o.Insecure {
		// #nosec G402 -- explicitly requested by the operator to rule out trust store problems
		cfg.InsecureSkipVerify = true
	}
	return cfg, nil
}
