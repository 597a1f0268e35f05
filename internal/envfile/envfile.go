// Package envfile loads the credential file written by the SaaS console
// ("export NAME='VALUE'" lines) and checks that every required key is present.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/failure"
)

var linePattern = regexp.MustCompile(`^export\s+(\w+)='(.+)'$`)

// maxLineSize bounds a single line; long JWT-style secrets exceed bufio's 64KB default.
const maxLineSize = 1 << 20

// Config is the typed view of the five required credential keys.
type Config struct {
	ClientID      string `mapstructure:"CAMUNDA_CONSOLE_CLIENT_ID"`
	ClientSecret  string `mapstructure:"CAMUNDA_CONSOLE_CLIENT_SECRET"`
	OAuthURL      string `mapstructure:"CAMUNDA_OAUTH_URL"`
	BaseURL       string `mapstructure:"CAMUNDA_CONSOLE_BASE_URL"`
	OAuthAudience string `mapstructure:"CAMUNDA_CONSOLE_OAUTH_AUDIENCE"`

	// Vars holds every parsed variable, including ones not required above.
	Vars map[string]string `mapstructure:"-"`
	// Path is the file the values were read from.
	Path string `mapstructure:"-"`
}

// Resolve returns the path to name, falling back to the parent directory.
func Resolve(name string) (string, error) {
	if isRegular(name) {
		return name, nil
	}
	parent := filepath.Join("..", name)
	if isRegular(parent) {
		return parent, nil
	}
	return "", failure.New(failure.KindNotFound,
		"%s file not found. Double check that this file is available in this directory or parent directory", name)
}

func isRegular(path string) bool {
	info, err := os.Stat(filepath.Clean(path))
	return err == nil && info.Mode().IsRegular()
}

// Load resolves name, reads it fully and returns the decoded Config.
// The file is closed before Load returns.
func Load(name string) (*Config, error) {
	path, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- the credential file path is chosen by the operator
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, failure.Wrap(failure.KindRead, err, "Error reading "+path)
	}
	defer func() { _ = f.Close() }()

	vars, err := Parse(f, path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(vars)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse reads "export NAME='VALUE'" lines from r. Blank lines and lines
// starting with '#' are skipped; any other line that does not match fails
// the whole parse. name is only used in error messages, which carry the
// "Error reading <name>" prefix.
func Parse(r io.Reader, name string) (map[string]string, error) {
	vars := map[string]string{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, failure.New(failure.KindFormat, "Error reading %s: Invalid format in %s at line %d: %s", name, name, lineNum, line)
		}
		vars[m[1]] = m[2]
	}
	if err := sc.Err(); err != nil {
		return nil, failure.Wrap(failure.KindRead, err, "Error reading "+name)
	}
	return vars, nil
}

// Missing returns the required keys absent from vars, in declaration order.
// Only presence is checked; the line pattern already rules out empty values.
func Missing(vars map[string]string) []string {
	var missing []string
	for _, k := range constants.RequiredKeys {
		if _, ok := vars[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Decode checks the required keys and maps vars onto a Config.
func Decode(vars map[string]string) (*Config, error) {
	if missing := Missing(vars); len(missing) > 0 {
		return nil, failure.New(failure.KindMissingKeys,
			"Missing required environment variables: %s", strings.Join(missing, ", "))
	}
	var cfg Config
	if err := mapstructure.Decode(vars, &cfg); err != nil {
		return nil, failure.Wrap(failure.KindOther, err, "decode credential file")
	}
	cfg.Vars = make(map[string]string, len(vars))
	for k, v := range vars {
		cfg.Vars[k] = v
	}
	return &cfg, nil
}

// MaskCredential keeps the first and last four characters of s.
func MaskCredential(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// String renders the config for logs without the secret.
func (c *Config) String() string {
	return fmt.Sprintf("client_id=%s oauth_url=%s base_url=%s audience=%s",
		MaskCredential(c.ClientID), c.OAuthURL, c.BaseURL, c.OAuthAudience)
}
