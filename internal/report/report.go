// Package report writes a machine-readable summary of a connectivity run so
// CI jobs can archive it next to the exit code.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/connprobe/pkg/exitcode"
	"gopkg.in/yaml.v3"
)

// Stage names recorded in reports.
const (
	StageRuntime = "runtime"
	StageConfig  = "config"
	StageToken   = "token"
	StageProbe   = "probe"
	StageVerify  = "validate"
)

// StageTiming records how long a stage took and whether it passed.
type StageTiming struct {
	Name     string        `yaml:"name" json:"name"`
	Duration time.Duration `yaml:"duration" json:"duration_ns"`
	OK       bool          `yaml:"ok" json:"ok"`
}

// Report is the document written by Write.
type Report struct {
	StartedAt     time.Time     `yaml:"started_at" json:"started_at"`
	ExitCode      int           `yaml:"exit_code" json:"exit_code"`
	Outcome       string        `yaml:"outcome" json:"outcome"`
	Message       string        `yaml:"message,omitempty" json:"message,omitempty"`
	FailedStage   string        `yaml:"failed_stage,omitempty" json:"failed_stage,omitempty"`
	FailureKind   string        `yaml:"failure_kind,omitempty" json:"failure_kind,omitempty"`
	EnvFile       string        `yaml:"env_file,omitempty" json:"env_file,omitempty"`
	TokenEndpoint string        `yaml:"token_endpoint,omitempty" json:"token_endpoint,omitempty"`
	APIURL        string        `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	StatusCode    int           `yaml:"status_code,omitempty" json:"status_code,omitempty"`
	Stages        []StageTiming `yaml:"stages" json:"stages"`
}

// New starts a report at now.
func New(now time.Time) *Report {
	return &Report{StartedAt: now.UTC(), Stages: []StageTiming{}}
}

// Stage appends a timing entry.
func (r *Report) Stage(name string, d time.Duration, ok bool) {
	r.Stages = append(r.Stages, StageTiming{Name: name, Duration: d, OK: ok})
}

// Finish records the final outcome.
func (r *Report) Finish(code exitcode.Code, message string) {
	r.ExitCode = code.Int()
	r.Outcome = code.String()
	r.Message = message
}

// Write encodes r as JSON when path ends in .json and as YAML otherwise.
func Write(path string, r *Report) error {
	clean := filepath.Clean(path)
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(clean), ".json") {
		data, err = json.MarshalIndent(r, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(clean, data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", clean, err)
	}
	return nil
}
