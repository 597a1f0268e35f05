package failure

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/loykin/connprobe/pkg/exitcode"
)

// Outcome is the result of classifying a failure: the exit code and the
// reason printed in the failure banner.
type Outcome struct {
	Code    exitcode.Code
	Message string
}

var (
	valueAuthWords = []string{"token", "access_token", "authentication", "unauthorized"}

	sslWords     = []string{"ssl", "certificate"}
	connWords    = []string{"connection", "proxy", "network"}
	timeoutWords = []string{"timeout", "timed out"}
	authWords    = []string{"401", "403", "unauthorized", "forbidden", "authentication", "token"}
)

// Classify maps err to an exit code and a diagnostic message. A nil error
// is a success. Typed failures are mapped by kind; everything else falls
// through to keyword matching on the message, first match wins.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Code: exitcode.Success}
	}
	msg := err.Error()

	var fe *Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case KindNotFound, KindValidation, KindRead:
			return Outcome{Code: exitcode.OtherError, Message: msg}
		case KindDecode:
			return Outcome{Code: exitcode.OtherError, Message: "Unexpected error: " + msg}
		case KindFormat, KindMissingKeys, KindAuth:
			return classifyValue(msg)
		case KindSSL:
			return Outcome{Code: exitcode.SSLError, Message: "SSL error: " + msg}
		case KindConnection:
			return Outcome{Code: exitcode.ConnectionError, Message: "Connection error: " + msg}
		case KindTimeout:
			return Outcome{Code: exitcode.ConnectionError, Message: "Connection error (timeout): " + msg}
		}
		return classifyMessage(msg)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return Outcome{Code: exitcode.OtherError, Message: msg}
	}
	return classifyMessage(msg)
}

// classifyValue handles format and validation style errors: only those that
// talk about tokens or authentication are auth failures.
func classifyValue(msg string) Outcome {
	if containsAny(strings.ToLower(msg), valueAuthWords) {
		return Outcome{Code: exitcode.AuthError, Message: "Authentication failed: " + msg}
	}
	return Outcome{Code: exitcode.OtherError, Message: msg}
}

// classifyMessage is the keyword fallback. The order matters: messages often
// contain words from several families.
func classifyMessage(msg string) Outcome {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, sslWords):
		return Outcome{Code: exitcode.SSLError, Message: "SSL error: " + msg}
	case containsAny(lower, connWords):
		return Outcome{Code: exitcode.ConnectionError, Message: "Connection error: " + msg}
	case containsAny(lower, timeoutWords):
		return Outcome{Code: exitcode.ConnectionError, Message: "Connection error (timeout): " + msg}
	case containsAny(lower, authWords):
		return Outcome{Code: exitcode.AuthError, Message: "Authentication error: " + msg}
	default:
		return Outcome{Code: exitcode.OtherError, Message: "Unexpected error: " + msg}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
