package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/loykin/connprobe/internal/auth/oauth2"
	"github.com/loykin/connprobe/internal/common"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/httpc"
	"github.com/loykin/connprobe/internal/util"
	"github.com/spf13/viper"
)

// Viper keys. Flags use the same names with '-' instead of '_'.
const (
	KeyEnvFile       = "env_file"
	KeyTimeout       = "timeout"
	KeyProbePath     = "probe_path"
	KeyGrantStyle    = "grant_style"
	KeyInsecure      = "insecure"
	KeyCACert        = "ca_cert"
	KeyMinTLSVersion = "min_tls_version"
	KeyProxy         = "proxy"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyNoMask        = "no_mask"
	KeyReport        = "report"
)

// EnvPrefix is the prefix of environment variable overrides (CONNPROBE_TIMEOUT, ...).
const EnvPrefix = "CONNPROBE"

type LoggingConfig struct {
	Level         string
	Format        string
	MaskSensitive bool
}

// Options is everything a run needs besides the credential file contents.
type Options struct {
	EnvFile    string
	Timeout    time.Duration
	ProbePath  string
	GrantStyle oauth2.GrantStyle
	TLS        httpc.TLSOptions
	Proxy      string
	ReportPath string
	Logging    LoggingConfig
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEnvFile, constants.DefaultEnvFile)
	v.SetDefault(KeyTimeout, constants.DefaultTimeout)
	v.SetDefault(KeyProbePath, constants.DefaultProbePath)
	v.SetDefault(KeyGrantStyle, string(oauth2.StyleJSON))
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyCACert, "")
	v.SetDefault(KeyMinTLSVersion, "")
	v.SetDefault(KeyProxy, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyNoMask, false)
	v.SetDefault(KeyReport, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// FromViper reads and validates Options.
func FromViper(v *viper.Viper) (*Options, error) {
	style, err := oauth2.ParseGrantStyle(v.GetString(KeyGrantStyle))
	if err != nil {
		return nil, err
	}
	timeout := v.GetDuration(KeyTimeout)
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout: %q (must be a positive duration such as 30s)", v.GetString(KeyTimeout))
	}
	envFile := util.TrimWithDefault(v.GetString(KeyEnvFile), constants.DefaultEnvFile)
	minTLS, hasMinTLS := util.TrimEmptyCheck(v.GetString(KeyMinTLSVersion))
	if hasMinTLS && httpc.ParseTLSVersion(minTLS) == 0 {
		return nil, fmt.Errorf("invalid min TLS version: %s (valid: 1.0, 1.1, 1.2, 1.3)", minTLS)
	}
	opts := &Options{
		EnvFile:    envFile,
		Timeout:    timeout,
		ProbePath:  strings.TrimSpace(v.GetString(KeyProbePath)),
		GrantStyle: style,
		TLS: httpc.TLSOptions{
			Insecure:      v.GetBool(KeyInsecure),
			CACertFile:    strings.TrimSpace(v.GetString(KeyCACert)),
			MinTLSVersion: minTLS,
		},
		Proxy:      strings.TrimSpace(v.GetString(KeyProxy)),
		ReportPath: strings.TrimSpace(v.GetString(KeyReport)),
		Logging: LoggingConfig{
			Level:         v.GetString(KeyLogLevel),
			Format:        v.GetString(KeyLogFormat),
			MaskSensitive: !v.GetBool(KeyNoMask),
		},
	}
	if _, err := common.ParseLogLevel(opts.Logging.Level); err != nil {
		return nil, err
	}
	return opts, nil
}

// SetupLogging builds the logger described by c, installs it as the global
// default and returns it. Logs go to w, never to the operator transcript.
func (c LoggingConfig) SetupLogging(w io.Writer) (*common.Logger, error) {
	level, err := common.ParseLogLevel(c.Level)
	if err != nil {
		return nil, err
	}
	logger, err := common.New(w, level, c.Format)
	if err != nil {
		return nil, err
	}
	logger.EnableMasking(c.MaskSensitive)
	common.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", c.Format,
		"mask_sensitive", logger.IsMaskingEnabled())
	return logger, nil
}
