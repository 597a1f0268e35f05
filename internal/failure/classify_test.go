package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/loykin/connprobe/pkg/exitcode"
)

func TestClassify_MessageKeywords(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   exitcode.Code
		prefix string
	}{
		{"ssl", errors.New("SSL: CERTIFICATE_VERIFY_FAILED"), exitcode.SSLError, "SSL error: "},
		{"certificate", errors.New("x509: certificate signed by unknown authority"), exitcode.SSLError, "SSL error: "},
		{"connection", errors.New("Connection refused by host"), exitcode.ConnectionError, "Connection error: "},
		{"proxy", errors.New("Unable to reach proxy"), exitcode.ConnectionError, "Connection error: "},
		{"network", errors.New("network is unreachable"), exitcode.ConnectionError, "Connection error: "},
		{"timeout", errors.New("read timeout after 30s"), exitcode.ConnectionError, "Connection error (timeout): "},
		{"timed out", errors.New("request timed out"), exitcode.ConnectionError, "Connection error (timeout): "},
		{"401", errors.New("HTTP error 401: nope"), exitcode.AuthError, "Authentication error: "},
		{"unauthorized", errors.New("Unauthorized client"), exitcode.AuthError, "Authentication error: "},
		{"forbidden", errors.New("Forbidden"), exitcode.AuthError, "Authentication error: "},
		{"other", errors.New("something odd"), exitcode.OtherError, "Unexpected error: "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Classify(tc.err)
			if out.Code != tc.code {
				t.Fatalf("code: got %v want %v", out.Code, tc.code)
			}
			if !strings.HasPrefix(out.Message, tc.prefix) {
				t.Fatalf("message %q missing prefix %q", out.Message, tc.prefix)
			}
		})
	}
}

func TestClassify_OrderFirstMatchWins(t *testing.T) {
	// ssl beats connection, connection beats timeout, timeout beats auth
	cases := map[string]exitcode.Code{
		"connection reset during SSL handshake": exitcode.SSLError,
		"connection timeout":                    exitcode.ConnectionError,
		"token request timed out":               exitcode.ConnectionError,
		"HTTP error 500: certificate store":     exitcode.SSLError,
	}
	for msg, want := range cases {
		if got := Classify(errors.New(msg)).Code; got != want {
			t.Fatalf("%q: got %v want %v", msg, got, want)
		}
	}
}

func TestClassify_TypedKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code exitcode.Code
		msg  string
	}{
		{"not found", New(KindNotFound, "envVars.txt file not found"), exitcode.OtherError, "envVars.txt file not found"},
		{"format", New(KindFormat, "Invalid format in envVars.txt at line 2: foo"), exitcode.OtherError, "Invalid format in envVars.txt at line 2: foo"},
		{"missing keys", New(KindMissingKeys, "Missing required environment variables: A"), exitcode.OtherError, "Missing required environment variables: A"},
		{"auth", New(KindAuth, "Access token not found in response"), exitcode.AuthError, "Authentication failed: Access token not found in response"},
		{"validation", New(KindValidation, "Response does not contain required attributes."), exitcode.OtherError, "Response does not contain required attributes."},
		{"ssl", New(KindSSL, "bad cert"), exitcode.SSLError, "SSL error: bad cert"},
		{"connection", New(KindConnection, "dial tcp: refused"), exitcode.ConnectionError, "Connection error: dial tcp: refused"},
		{"timeout", New(KindTimeout, "deadline exceeded"), exitcode.ConnectionError, "Connection error (timeout): deadline exceeded"},
		{"http 401", HTTP(401, "denied"), exitcode.AuthError, "Authentication error: HTTP error 401: denied"},
		{"http 500", HTTP(500, "boom"), exitcode.OtherError, "Unexpected error: HTTP error 500: boom"},
		{"read", New(KindRead, "Error reading envVars.txt: bufio.Scanner: token too long"), exitcode.OtherError, "Error reading envVars.txt: bufio.Scanner: token too long"},
		{"decode", Decode("<html>proxy sign-in</html>"), exitcode.OtherError, "Unexpected error: Invalid JSON response: body of 26 bytes is not valid JSON"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Classify(tc.err)
			if out.Code != tc.code || out.Message != tc.msg {
				t.Fatalf("got (%v, %q) want (%v, %q)", out.Code, out.Message, tc.code, tc.msg)
			}
		})
	}
}

func TestClassify_WrappedAndUntyped(t *testing.T) {
	wrapped := fmt.Errorf("token stage: %w", New(KindSSL, "bad cert"))
	if got := Classify(wrapped).Code; got != exitcode.SSLError {
		t.Fatalf("wrapped ssl: got %v", got)
	}
	nf := fmt.Errorf("open cfg: %w", fs.ErrNotExist)
	if got := Classify(nf).Code; got != exitcode.OtherError {
		t.Fatalf("not exist: got %v", got)
	}
	if got := Classify(nil).Code; got != exitcode.Success {
		t.Fatalf("nil: got %v", got)
	}
}

func TestWrap_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(KindOther, cause, "Invalid JSON response")
	if e.Error() != "Invalid JSON response: boom" {
		t.Fatalf("unexpected message %q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to find cause")
	}
	if KindOf(e) != KindOther || KindOf(errors.New("x")) != KindOther {
		t.Fatal("unexpected kind")
	}
	if KindOf(fmt.Errorf("x: %w", New(KindAuth, "y"))) != KindAuth {
		t.Fatal("expected auth kind through wrap")
	}
}
