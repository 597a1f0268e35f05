package oauth2

import (
	"time"

	"github.com/loykin/connprobe/internal/failure"
	"github.com/tidwall/gjson"
	golangoauth2 "golang.org/x/oauth2"
)

// tokenFromBody reads a token endpoint response body into an oauth2.Token.
func tokenFromBody(body []byte) (*golangoauth2.Token, error) {
	if !gjson.ValidBytes(body) {
		return nil, failure.Decode(truncate(string(body), 200))
	}
	parsed := gjson.ParseBytes(body)
	tok := &golangoauth2.Token{
		AccessToken: parsed.Get("access_token").String(),
		TokenType:   parsed.Get("token_type").String(),
	}
	if secs := parsed.Get("expires_in").Int(); secs > 0 {
		tok.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}

// normalizeOAuth2Token returns the bare access token. Expiry is informational
// only; a token is used once, right after it is issued.
func normalizeOAuth2Token(tok *golangoauth2.Token) (string, error) {
	if tok == nil || tok.AccessToken == "" {
		return "", failure.New(failure.KindAuth, "Access token not found in response")
	}
	return tok.AccessToken, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
