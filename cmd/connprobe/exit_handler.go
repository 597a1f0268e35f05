package main

import (
	"fmt"
	"io"
	"os"

	"github.com/loykin/connprobe/internal/common"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/pkg/exitcode"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code exitcode.Code)
	Fail(err error)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct {
	out    io.Writer
	logger *common.Logger
}

// NewDefaultExitHandler creates a new default exit handler
func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{
		out:    os.Stdout,
		logger: common.GetLogger().WithComponent("main"),
	}
}

// Exit terminates the program with the given exit code
func (h *DefaultExitHandler) Exit(code exitcode.Code) {
	os.Exit(code.Int())
}

// Fail reports an error raised before the check could start (bad flags or
// settings) with the failure banner and exits with OtherError.
func (h *DefaultExitHandler) Fail(err error) {
	h.logger.Debug("command execution failed", "error", err)
	_, _ = fmt.Fprintf(h.out, constants.BannerFailed+"\n", err.Error())
	h.Exit(exitcode.OtherError)
}

// Global exit handler (can be replaced for testing)
var exitHandler ExitHandler = NewDefaultExitHandler()
