// Package runtimecheck verifies the binary runs on a supported Go runtime.
package runtimecheck

import (
	"go/version"
	"runtime"
	"strings"

	"github.com/loykin/connprobe/internal/failure"
)

// Result describes a passed check. Parsed is false when the running version
// string could not be compared (development toolchains); such runs continue.
type Result struct {
	Version string
	Parsed  bool
}

// Check compares current against minimum, both in "go1.N[.P]" form.
func Check(current, minimum string) (Result, error) {
	res := Result{Version: current}
	if !version.IsValid(current) {
		return res, nil
	}
	res.Parsed = true
	if version.Compare(current, minimum) < 0 {
		return res, failure.New(failure.KindOther,
			"Go %s or higher is required. Current version: %s\nPlease rebuild with a newer toolchain or contact your training manager.\nDownload Go from: https://go.dev/dl/",
			strings.TrimPrefix(version.Lang(minimum), "go"), current)
	}
	return res, nil
}

// CheckRuntime runs Check against the running binary.
func CheckRuntime(minimum string) (Result, error) {
	return Check(runtime.Version(), minimum)
}
