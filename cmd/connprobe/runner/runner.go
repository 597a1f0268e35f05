package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/loykin/connprobe/cmd/connprobe/config"
	"github.com/loykin/connprobe/internal/auth/oauth2"
	"github.com/loykin/connprobe/internal/common"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/envfile"
	"github.com/loykin/connprobe/internal/failure"
	"github.com/loykin/connprobe/internal/httpc"
	"github.com/loykin/connprobe/internal/probe"
	"github.com/loykin/connprobe/internal/report"
	"github.com/loykin/connprobe/internal/runtimecheck"
	"github.com/loykin/connprobe/pkg/exitcode"
)

// Runner executes one connectivity check: runtime check, credential file,
// token, API probe, validation. The first failing stage ends the run.
type Runner struct {
	Opts      config.Options
	Out       io.Writer
	Logger    *common.Logger
	UserAgent string

	// Overridable for tests. A nil RuntimeVersion checks the running binary.
	Now            func() time.Time
	RuntimeVersion func() string
	MinGoVersion   string
}

// New returns a Runner printing the operator transcript to out.
func New(opts config.Options, out io.Writer) *Runner {
	return &Runner{
		Opts:         opts,
		Out:          out,
		Now:          time.Now,
		MinGoVersion: constants.MinGoVersion,
	}
}

// stageError ties a failure to the stage that produced it.
type stageError struct {
	stage string
	err   error
}

// Run performs the check and returns the exit code. It always prints exactly
// one banner line.
func (r *Runner) Run(ctx context.Context) exitcode.Code {
	log := r.logger()
	rep := report.New(r.now())

	var outcome failure.Outcome
	if se := r.run(ctx, rep); se != nil {
		if se.stage == report.StageRuntime {
			outcome = failure.Outcome{Code: exitcode.OtherError, Message: se.err.Error()}
		} else {
			outcome = failure.Classify(se.err)
		}
		rep.FailedStage = se.stage
		rep.FailureKind = failure.KindOf(se.err).String()
		log.Debug("run failed", "stage", se.stage, "kind", rep.FailureKind, "exit_code", outcome.Code.Int(), "error", se.err)
		r.printf(constants.BannerFailed+"\n", outcome.Message)
	} else {
		outcome = failure.Outcome{Code: exitcode.Success}
		r.printf("%s\n", constants.BannerSuccess)
	}

	rep.Finish(outcome.Code, outcome.Message)
	if path := r.Opts.ReportPath; path != "" {
		if err := report.Write(path, rep); err != nil {
			log.Warn("could not write report", "path", path, "error", err)
		} else {
			log.Info("report written", "path", path)
		}
	}
	return outcome.Code
}

func (r *Runner) run(ctx context.Context, rep *report.Report) *stageError {
	start := r.now()
	res, err := r.checkRuntime()
	rep.Stage(report.StageRuntime, r.since(start), err == nil)
	if err != nil {
		return &stageError{report.StageRuntime, err}
	}
	if res.Parsed {
		r.printf("Go runtime version check passed: %s\n", res.Version)
	} else {
		r.printf("Warning: Could not parse Go version %q, continuing anyway...\n", res.Version)
	}

	r.printf("Loading environment variables...\n")
	start = r.now()
	cfg, err := envfile.Load(r.Opts.EnvFile)
	rep.Stage(report.StageConfig, r.since(start), err == nil)
	if err != nil {
		return &stageError{report.StageConfig, err}
	}
	rep.EnvFile = cfg.Path
	rep.TokenEndpoint = cfg.OAuthURL
	r.logger().Debug("credential file loaded", "path", cfg.Path, "config", cfg.String())

	hc, err := r.httpClient()
	if err != nil {
		return &stageError{report.StageConfig, failure.Wrap(failure.KindOther, err, "invalid TLS settings")}
	}

	r.printf("Requesting access token...\n")
	r.printf("Using client ID: %s\n", envfile.MaskCredential(cfg.ClientID))
	acq := &oauth2.Acquirer{
		Config: oauth2.ClientCredentialsConfig{
			ClientID:  cfg.ClientID,
			ClientSec: cfg.ClientSecret,
			TokenURL:  cfg.OAuthURL,
			Audience:  cfg.OAuthAudience,
			Style:     r.Opts.GrantStyle,
		},
		HTTP:   hc,
		Logger: r.logger().WithComponent("oauth2"),
	}
	start = r.now()
	token, err := acq.Acquire(ctx)
	rep.Stage(report.StageToken, r.since(start), err == nil)
	if err != nil {
		return &stageError{report.StageToken, err}
	}

	r.printf("Testing API connection...\n")
	p := &probe.Prober{
		BaseURL: cfg.BaseURL,
		Path:    r.Opts.ProbePath,
		HTTP:    hc,
		Logger:  r.logger().WithComponent("probe"),
	}
	rep.APIURL = p.URL()
	start = r.now()
	result, err := p.Probe(ctx, token)
	rep.Stage(report.StageProbe, r.since(start), err == nil)
	if err != nil {
		return &stageError{report.StageProbe, err}
	}
	rep.StatusCode = result.StatusCode
	if n, ok := probe.MemberCount(result.Body); ok {
		r.logger().Debug("api returned members", "count", n)
	}

	start = r.now()
	err = probe.Validate(result)
	rep.Stage(report.StageVerify, r.since(start), err == nil)
	if err != nil {
		return &stageError{report.StageVerify, err}
	}
	return nil
}

func (r *Runner) httpClient() (*httpc.Httpc, error) {
	tlsCfg, err := httpc.BuildTLSConfig(r.Opts.TLS)
	if err != nil {
		return nil, err
	}
	if r.Opts.TLS.Insecure {
		r.logger().Warn("TLS certificate verification disabled")
	}
	return &httpc.Httpc{
		TlsConfig: tlsCfg,
		Timeout:   r.Opts.Timeout,
		Proxy:     r.Opts.Proxy,
		UserAgent: r.UserAgent,
	}, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.Out, format, args...)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) checkRuntime() (runtimecheck.Result, error) {
	if r.RuntimeVersion != nil {
		return runtimecheck.Check(r.RuntimeVersion(), r.minGoVersion())
	}
	return runtimecheck.CheckRuntime(r.minGoVersion())
}

func (r *Runner) minGoVersion() string {
	if r.MinGoVersion != "" {
		return r.MinGoVersion
	}
	return constants.MinGoVersion
}

func (r *Runner) since(t time.Time) time.Duration { return r.now().Sub(t) }

func (r *Runner) logger() *common.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return common.GetLogger().WithComponent("runner")
}
