package oauth2

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of registered JWT claims useful when diagnosing
// a token issued for the wrong audience or already expired.
type Claims struct {
	Issuer    string
	Subject   string
	Audience  []string
	ExpiresAt time.Time
}

// InspectClaims decodes raw without verifying its signature. ok is false when
// raw is not a JWT; opaque tokens are legal.
func InspectClaims(raw string) (*Claims, bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &rc); err != nil {
		return nil, false
	}
	c := &Claims{Issuer: rc.Issuer, Subject: rc.Subject, Audience: rc.Audience}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}

// HasAudience reports whether aud is one of the token audiences.
func (c *Claims) HasAudience(aud string) bool {
	for _, a := range c.Audience {
		if a == aud {
			return true
		}
	}
	return false
}
