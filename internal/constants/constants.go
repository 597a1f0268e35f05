package constants

import (
	"net/http"
	"time"
)

// Credential file
const (
	DefaultEnvFile = "envVars.txt"

	KeyClientID      = "CAMUNDA_CONSOLE_CLIENT_ID"
	KeyClientSecret  = "CAMUNDA_CONSOLE_CLIENT_SECRET"
	KeyOAuthURL      = "CAMUNDA_OAUTH_URL"
	KeyBaseURL       = "CAMUNDA_CONSOLE_BASE_URL"
	KeyOAuthAudience = "CAMUNDA_CONSOLE_OAUTH_AUDIENCE"
)

// RequiredKeys lists the credential file keys in the order they are reported when missing.
var RequiredKeys = []string{
	KeyClientID,
	KeyClientSecret,
	KeyOAuthURL,
	KeyBaseURL,
	KeyOAuthAudience,
}

// HTTP
const (
	DefaultTimeout        = 30 * time.Second
	DefaultProbePath      = "/members"
	DefaultGrantType      = "client_credentials"
	DefaultExpectedStatus = http.StatusOK
	ContentTypeJSON       = "application/json"
)

// Runtime
const (
	MinGoVersion = "go1.22"
)

// Console banners
const (
	BannerSuccess = "***** CONNECTION SUCCESSFUL *****"
	BannerFailed  = "***** CONNECTION FAILED: %s *****"
)
