package httpc

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/connprobe/internal/failure"
)

// helper to perform a simple GET using our client
func doGet(t *testing.T, h *Httpc, url string) (int, error) {
	t.Helper()
	resp, err := h.New().R().Get(url)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(200)
	_, _ = w.Write([]byte("ok"))
}

func TestHTTPClient_SelfSignedIsSSLFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(okHandler))
	defer srv.Close()

	_, err := doGet(t, &Httpc{}, srv.URL)
	if err == nil {
		t.Fatal("expected error without insecure TLS, got nil")
	}
	if fe := ClassifyTransport(err); fe.Kind != failure.KindSSL {
		t.Fatalf("expected SSL failure, got %v (%v)", fe.Kind, err)
	}
}

func TestHTTPClient_Insecure_AllowsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(okHandler))
	defer srv.Close()

	cfg, err := BuildTLSConfig(TLSOptions{Insecure: true})
	if err != nil {
		t.Fatalf("build tls: %v", err)
	}
	if code, err := doGet(t, &Httpc{TlsConfig: cfg}, srv.URL); err != nil || code != 200 {
		t.Fatalf("expected 200 with insecure, got code=%d err=%v", code, err)
	}
}

func TestHTTPClient_CABundleTrustsServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(okHandler))
	defer srv.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}
	if err := os.WriteFile(caPath, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := BuildTLSConfig(TLSOptions{CACertFile: caPath})
	if err != nil {
		t.Fatalf("build tls: %v", err)
	}
	if code, err := doGet(t, &Httpc{TlsConfig: cfg}, srv.URL); err != nil || code != 200 {
		t.Fatalf("expected 200 with CA bundle, got code=%d err=%v", code, err)
	}
}

func TestHTTPClient_RefusedIsConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = doGet(t, &Httpc{Timeout: 2 * time.Second}, "http://"+addr+"/")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if fe := ClassifyTransport(err); fe.Kind != failure.KindConnection {
		t.Fatalf("expected connection failure, got %v (%v)", fe.Kind, err)
	}
}

func TestHTTPClient_SlowServerIsTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()
	defer close(done)

	_, err := doGet(t, &Httpc{Timeout: 50 * time.Millisecond}, srv.URL)
	if err == nil {
		t.Fatal("expected timeout")
	}
	if fe := ClassifyTransport(err); fe.Kind != failure.KindTimeout {
		t.Fatalf("expected timeout failure, got %v (%v)", fe.Kind, err)
	}
}

func TestHTTPClient_ProxyAndUserAgentApplied(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		okHandler(w, r)
	}))
	defer srv.Close()

	if _, err := doGet(t, &Httpc{UserAgent: "connprobe/test"}, srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA != "connprobe/test" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}

	c := (&Httpc{Proxy: "http://127.0.0.1:1"}).New()
	if !c.IsProxySet() {
		t.Fatal("expected proxy to be set")
	}
}

func TestBuildTLSConfig(t *testing.T) {
	cfg, err := BuildTLSConfig(TLSOptions{})
	if err != nil || cfg != nil {
		t.Fatalf("expected nil config for defaults, got %v %v", cfg, err)
	}
	cfg, err = BuildTLSConfig(TLSOptions{MinTLSVersion: "tls1.3"})
	if err != nil || cfg.MinVersion != tls.VersionTLS13 {
		t.Fatalf("expected TLS1.3 min, got %v %v", cfg, err)
	}
	if _, err := BuildTLSConfig(TLSOptions{MinTLSVersion: "ssl3"}); err == nil {
		t.Fatal("expected error for unknown version")
	}
	if _, err := BuildTLSConfig(TLSOptions{CACertFile: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Fatal("expected error for missing CA file")
	}
}

func TestClassifyTransport_Messages(t *testing.T) {
	tests := []struct {
		err  error
		kind failure.Kind
	}{
		{errors.New("x509: certificate signed by unknown authority"), failure.KindSSL},
		{errors.New("remote error: tls: handshake failure"), failure.KindSSL},
		{errors.New("net/http: TLS handshake timeout"), failure.KindTimeout},
		{errors.New("proxyconnect tcp: dial tcp: lookup proxy.corp"), failure.KindConnection},
		{&net.DNSError{Err: "no such host", Name: "nope.invalid"}, failure.KindConnection},
		{errors.New("something else"), failure.KindOther},
	}
	for _, tc := range tests {
		if got := ClassifyTransport(tc.err).Kind; got != tc.kind {
			t.Fatalf("%v: got %v want %v", tc.err, got, tc.kind)
		}
	}
	if ClassifyTransport(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	typed := failure.New(failure.KindAuth, "x")
	if ClassifyTransport(typed) != typed {
		t.Fatal("typed failures pass through unchanged")
	}
}
