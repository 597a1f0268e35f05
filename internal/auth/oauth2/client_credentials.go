package oauth2

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/loykin/connprobe/internal/common"
	"github.com/loykin/connprobe/internal/constants"
	"github.com/loykin/connprobe/internal/failure"
	"github.com/loykin/connprobe/internal/httpc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig holds configuration for the Client Credentials grant.
type ClientCredentialsConfig struct {
	ClientID  string     `mapstructure:"client_id"`
	ClientSec string     `mapstructure:"client_secret"`
	TokenURL  string     `mapstructure:"token_url"`
	Audience  string     `mapstructure:"audience"`
	Style     GrantStyle `mapstructure:"style"`
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Audience     string `json:"audience"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Acquirer exchanges client credentials for a bearer token.
type Acquirer struct {
	Config ClientCredentialsConfig
	HTTP   *httpc.Httpc
	Logger *common.Logger
}

// Acquire performs one token request. Transport failures come back as typed
// SSL, connection or timeout failures; non-2xx responses as HTTP failures.
func (a *Acquirer) Acquire(ctx context.Context) (string, error) {
	c := a.Config
	tokenURL := strings.TrimSpace(c.TokenURL)
	if tokenURL == "" {
		return "", failure.New(failure.KindOther, "oauth2: token_url is required for client_credentials grant")
	}
	if c.ClientID == "" || c.ClientSec == "" {
		return "", failure.New(failure.KindOther, "oauth2: client_id and client_secret are required for client_credentials grant")
	}
	hc := a.HTTP
	if hc == nil {
		hc = &httpc.Httpc{}
	}
	log := a.logger().WithRequest("POST", tokenURL)

	var (
		tok *oauth2.Token
		err error
	)
	switch c.Style {
	case StyleForm:
		tok, err = a.acquireForm(ctx, hc, tokenURL)
	default:
		tok, err = a.acquireJSON(ctx, hc, tokenURL)
	}
	if err != nil {
		log.Debug("token request failed", "error", err, "kind", failure.KindOf(err).String())
		var fe *failure.Error
		if errors.As(err, &fe) && fe.Kind == failure.KindDecode {
			log.Debug("token endpoint returned a non-JSON body", "body", fe.Body)
		}
		return "", err
	}
	value, err := normalizeOAuth2Token(tok)
	if err != nil {
		return "", err
	}
	log.Debug("access token acquired", "token_type", tok.TokenType, "expiry", tok.Expiry)
	a.inspect(value)
	return value, nil
}

func (a *Acquirer) acquireJSON(ctx context.Context, hc *httpc.Httpc, tokenURL string) (*oauth2.Token, error) {
	c := a.Config
	resp, err := hc.New().R().
		SetContext(ctx).
		SetHeader("Content-Type", constants.ContentTypeJSON).
		SetHeader("Accept", constants.ContentTypeJSON).
		SetBody(tokenRequest{
			GrantType:    constants.DefaultGrantType,
			Audience:     c.Audience,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSec,
		}).
		Post(tokenURL)
	if err != nil {
		return nil, httpc.ClassifyTransport(err)
	}
	if !resp.IsSuccess() {
		return nil, failure.HTTP(resp.StatusCode(), resp.String())
	}
	return tokenFromBody(resp.Body())
}

func (a *Acquirer) acquireForm(ctx context.Context, hc *httpc.Httpc, tokenURL string) (*oauth2.Token, error) {
	c := a.Config
	cc := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSec,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	if aud := strings.TrimSpace(c.Audience); aud != "" {
		cc.EndpointParams = url.Values{"audience": {aud}}
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, hc.New().GetClient())
	tok, err := cc.Token(ctx)
	if err == nil {
		return tok, nil
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		if code := re.Response.StatusCode; code < 200 || code > 299 {
			return nil, failure.HTTP(code, string(re.Body))
		}
		return nil, failure.Wrap(failure.KindAuth, err, "token request rejected")
	}
	if strings.Contains(err.Error(), "missing access_token") {
		return nil, failure.New(failure.KindAuth, "Access token not found in response")
	}
	return nil, httpc.ClassifyTransport(err)
}

// inspect logs the JWT claims of the token, if it is one. It never fails.
func (a *Acquirer) inspect(token string) {
	claims, ok := InspectClaims(token)
	if !ok {
		return
	}
	log := a.logger()
	log.Debug("access token claims", "issuer", claims.Issuer, "subject", claims.Subject,
		"audience", claims.Audience, "expires_at", claims.ExpiresAt)
	if aud := strings.TrimSpace(a.Config.Audience); aud != "" && len(claims.Audience) > 0 && !claims.HasAudience(aud) {
		log.Warn("access token audience does not include configured audience",
			"configured", aud, "token_audience", claims.Audience)
	}
}

func (a *Acquirer) logger() *common.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return common.GetLogger().WithComponent("oauth2")
}
