package main

import (
	"errors"
	"fmt"

	"github.com/loykin/connprobe/cmd/connprobe/config"
	"github.com/loykin/connprobe/cmd/connprobe/runner"
	"github.com/loykin/connprobe/pkg/exitcode"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// runError carries a non-zero exit code out of RunE.
type runError struct{ code exitcode.Code }

func (e *runError) Error() string { return "connectivity check failed: " + e.code.String() }

var rootCmd = &cobra.Command{
	Use:   "connprobe",
	Short: "Check that this machine can obtain an OAuth token and call the console API",
	Long: `connprobe reads client credentials from an envVars.txt file, requests an
access token and calls the console API with it.

Exit codes: 0 success, 1 SSL error, 2 connection error, 3 authentication error, 4 other error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err := opts.Logging.SetupLogging(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		r := runner.New(*opts, cmd.OutOrStdout())
		r.Logger = logger.WithComponent("runner")
		r.UserAgent = "connprobe/" + version
		if code := r.Run(cmd.Context()); code != exitcode.Success {
			return &runError{code: code}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the connprobe version",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "connprobe "+version)
	},
}

func init() {
	v := viper.GetViper()
	config.SetDefaults(v)

	f := rootCmd.Flags()
	f.String("env-file", v.GetString(config.KeyEnvFile), "credential file (falls back to ../<name> when missing)")
	f.Duration("timeout", v.GetDuration(config.KeyTimeout), "timeout for each HTTP request")
	f.String("probe-path", v.GetString(config.KeyProbePath), "API path requested with the access token")
	f.String("grant-style", v.GetString(config.KeyGrantStyle), "token request encoding: json or form")
	f.Bool("insecure", v.GetBool(config.KeyInsecure), "skip TLS certificate verification")
	f.String("ca-cert", v.GetString(config.KeyCACert), "PEM bundle of extra trusted CAs (e.g. a corporate proxy CA)")
	f.String("min-tls-version", v.GetString(config.KeyMinTLSVersion), "minimum TLS version: 1.0, 1.1, 1.2 or 1.3")
	f.String("proxy", v.GetString(config.KeyProxy), "proxy URL; defaults to HTTPS_PROXY/HTTP_PROXY")
	f.String("log-level", v.GetString(config.KeyLogLevel), "log level on stderr: error, warn, info, debug")
	f.String("log-format", v.GetString(config.KeyLogFormat), "log format: text, json, color")
	f.Bool("no-mask", v.GetBool(config.KeyNoMask), "do not mask secrets in logs")
	f.String("report", v.GetString(config.KeyReport), "write a YAML (or .json) run report to this path")

	bind := map[string]string{
		config.KeyEnvFile:       "env-file",
		config.KeyTimeout:       "timeout",
		config.KeyProbePath:     "probe-path",
		config.KeyGrantStyle:    "grant-style",
		config.KeyInsecure:      "insecure",
		config.KeyCACert:        "ca-cert",
		config.KeyMinTLSVersion: "min-tls-version",
		config.KeyProxy:         "proxy",
		config.KeyLogLevel:      "log-level",
		config.KeyLogFormat:     "log-format",
		config.KeyNoMask:        "no-mask",
		config.KeyReport:        "report",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(versionCmd)
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		exitHandler.Exit(exitcode.Success)
		return
	}
	var re *runError
	if errors.As(err, &re) {
		exitHandler.Exit(re.code)
		return
	}
	exitHandler.Fail(err)
}
