package common

import (
	"log/slog"
	"regexp"
	"strings"
)

const maskedValue = "***MASKED***"

// SensitivePattern describes one kind of secret that may show up in log output.
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp // matches the secret inside free text, may be nil
	Replacement string
	Keys        []string // attribute keys whose values are always masked
}

// DefaultSensitivePatterns covers the credentials the probe handles: the client
// secret from the env file, the issued access token and the Authorization header.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "client_secret",
		Regex:       regexp.MustCompile(`(?i)((?:client[_-]?)?secret)("?\s*[:=]\s*"?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"secret", "client_secret", "client-secret", "camunda_console_client_secret"},
	},
	{
		Name:        "access_token",
		Regex:       regexp.MustCompile(`(?i)((?:access|refresh|id)[_-]?token)("?\s*[:=]\s*"?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"token", "access_token", "refresh_token", "id_token"},
	},
	{
		Name:        "bearer",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + maskedValue,
	},
	{
		Name:        "basic",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + maskedValue,
	},
	{
		Name: "authorization",
		Keys: []string{"authorization"},
	},
}

// Masker removes secrets from log attributes.
type Masker struct {
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates an enabled masker with the default patterns.
func NewMasker() *Masker {
	return &Masker{patterns: DefaultSensitivePatterns, enabled: true}
}

func (m *Masker) SetEnabled(enabled bool) { m.enabled = enabled }

func (m *Masker) IsEnabled() bool { return m.enabled }

// MaskString replaces every secret found in input.
func (m *Masker) MaskString(input string) string {
	if !m.enabled {
		return input
	}
	for _, p := range m.patterns {
		if p.Regex != nil {
			input = p.Regex.ReplaceAllString(input, p.Replacement)
		}
	}
	return input
}

func (m *Masker) isSensitiveKey(key string) bool {
	for _, p := range m.patterns {
		for _, k := range p.Keys {
			if strings.EqualFold(key, k) {
				return true
			}
		}
	}
	return false
}

// replaceAttr is a slog.HandlerOptions.ReplaceAttr hook applying the masker.
func (m *Masker) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if !m.IsEnabled() {
		return a
	}
	if m.isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskedValue)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, m.MaskString(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, m.MaskString(err.Error()))
		}
	}
	return a
}
