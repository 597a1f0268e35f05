package oauth2

import (
	"errors"

	"github.com/loykin/connprobe/internal/util"
)

// GrantStyle selects how the client credentials grant is encoded.
type GrantStyle string

const (
	// StyleJSON posts a JSON document, as the SaaS console's identity provider expects.
	StyleJSON GrantStyle = "json"
	// StyleForm posts an RFC 6749 form via golang.org/x/oauth2/clientcredentials.
	StyleForm GrantStyle = "form"
)

// ParseGrantStyle returns StyleJSON for an empty value.
func ParseGrantStyle(s string) (GrantStyle, error) {
	switch util.TrimAndLower(s) {
	case "", "json":
		return StyleJSON, nil
	case "form", "form-urlencoded", "urlencoded":
		return StyleForm, nil
	default:
		return "", errors.New("oauth2: unsupported grant style: " + s + " (valid: json, form)")
	}
}
