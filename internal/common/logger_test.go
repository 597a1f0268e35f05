package common

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"":        LogLevelWarn,
		"error":   LogLevelError,
		"WARNING": LogLevelWarn,
		" info ":  LogLevelInfo,
		"debug":   LogLevelDebug,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v %v", in, got, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"", "text", "json", "color"} {
		var buf bytes.Buffer
		l, err := New(&buf, LogLevelInfo, format)
		if err != nil {
			t.Fatalf("%q: %v", format, err)
		}
		l.WithComponent("probe").Info("probe finished", "status", 200)
		if !strings.Contains(buf.String(), "probe finished") {
			t.Fatalf("%q: missing message in %q", format, buf.String())
		}
	}
	if _, err := New(&bytes.Buffer{}, LogLevelInfo, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(&buf, LogLevelWarn, "text")
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if l.Level() != LogLevelWarn || l.Level().ToSlogLevel() != slog.LevelWarn {
		t.Fatal("unexpected level")
	}
}

func TestLogger_MasksSecretsInTextAndJSON(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		var buf bytes.Buffer
		l, _ := New(&buf, LogLevelDebug, format)
		l.WithRequest("POST", "https://login.example.io/oauth/token").Debug("token request",
			"client_secret", "s3cr3t",
			"authorization", "Bearer abc",
			"error", errors.New(`HTTP error 400: {"access_token":"leak"}`))
		out := buf.String()
		if strings.Contains(out, "s3cr3t") || strings.Contains(out, "Bearer abc") || strings.Contains(out, "leak") {
			t.Fatalf("%s: secrets leaked: %q", format, out)
		}
		if !strings.Contains(out, "login.example.io") {
			t.Fatalf("%s: request context missing: %q", format, out)
		}
	}
}

func TestLogger_MaskingToggle(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(&buf, LogLevelInfo, "text")
	if !l.IsMaskingEnabled() {
		t.Fatal("masking should be enabled by default")
	}
	child := l.WithComponent("runner")
	l.EnableMasking(false)
	child.Info("raw", "client_secret", "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected unmasked output, got %q", buf.String())
	}
}

func TestGlobalLogger(t *testing.T) {
	orig := GetLogger()
	defer SetDefaultLogger(orig)

	var buf bytes.Buffer
	l, _ := New(&buf, LogLevelDebug, "text")
	SetDefaultLogger(l)
	if GetLogger() != l {
		t.Fatal("expected custom logger to be set as default")
	}

	GetLogger().WithComponent("runner").Info("test info message", "key", "value")
	GetLogger().Debug("test debug message")

	for _, want := range []string{"test info message", "component=runner", "test debug message"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in %q", want, buf.String())
		}
	}
}
