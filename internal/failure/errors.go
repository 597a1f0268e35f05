package failure

import (
	"errors"
	"fmt"
)

// Kind identifies which stage-level failure occurred.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindFormat
	KindMissingKeys
	KindSSL
	KindConnection
	KindTimeout
	KindHTTP
	KindAuth
	KindValidation
	KindRead
	KindDecode
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "FileNotFound"
	case KindFormat:
		return "FormatError"
	case KindMissingKeys:
		return "MissingKeys"
	case KindSSL:
		return "SSLFailure"
	case KindConnection:
		return "ConnectionFailure"
	case KindTimeout:
		return "TimeoutFailure"
	case KindHTTP:
		return "HttpFailure"
	case KindAuth:
		return "AuthFailure"
	case KindValidation:
		return "ValidationFailure"
	case KindRead:
		return "ReadError"
	case KindDecode:
		return "DecodeError"
	default:
		return "OtherError"
	}
}

// Error is the typed failure produced by every pipeline stage.
// Status is only set for KindHTTP; Body for KindHTTP and KindDecode.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Body    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns a failure of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind carrying cause. The message is
// prefix followed by the cause text.
func Wrap(kind Kind, cause error, prefix string) *Error {
	msg := prefix
	if cause != nil {
		if msg != "" {
			msg += ": "
		}
		msg += cause.Error()
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// HTTP returns a KindHTTP failure for a non-2xx response.
func HTTP(status int, body string) *Error {
	return &Error{
		Kind:    KindHTTP,
		Message: fmt.Sprintf("HTTP error %d: %s", status, body),
		Status:  status,
		Body:    body,
	}
}

// Decode returns a KindDecode failure for a response body that is not JSON.
// The body is kept for diagnostics but left out of the message.
func Decode(body string) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: fmt.Sprintf("Invalid JSON response: body of %d bytes is not valid JSON", len(body)),
		Body:    body,
	}
}

// KindOf reports the kind of err, or KindOther when err is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindOther
}
