// Package exitcode holds the process exit codes returned by connprobe.
// Scripts and CI jobs branch on these values, so they never change.
package exitcode

// Code is a process exit code.
type Code int

const (
	Success         Code = 0 // token acquired and API response validated
	SSLError        Code = 1 // TLS handshake or certificate failure
	ConnectionError Code = 2 // DNS, refused, proxy, network or timeout failure
	AuthError       Code = 3 // credentials rejected or no token issued
	OtherError      Code = 4 // anything else, including config and runtime checks
)

// String returns a short label used in reports.
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case SSLError:
		return "ssl_error"
	case ConnectionError:
		return "connection_error"
	case AuthError:
		return "auth_error"
	default:
		return "other_error"
	}
}

// Int returns the value to hand to os.Exit.
func (c Code) Int() int { return int(c) }
