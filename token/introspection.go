// Package token describes access tokens for logs without exposing them.
//
// Tokens issued by the identity provider are bearer credentials; anything that
// reaches a log sink goes through Describe, which keeps a short fingerprint and
// a few unverified claims. The signature is never checked here: the token is
// only ever validated by the resource server it is sent to.
package token

import (
	"encoding/hex"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/spamscope/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
)

// fingerprintBytes is the number of digest bytes kept in a fingerprint.
const fingerprintBytes = 8

// Summary is a loggable view of an access token.
type Summary struct {
	Fingerprint string `json:"fingerprint"`
	Length      int    `json:"length"`
	JWT         bool   `json:"jwt"`

	// Claims below are read without verifying the signature.
	Aud    []string   `json:"aud,omitempty"`
	Scopes []string   `json:"scp,omitempty"`
	Roles  []string   `json:"roles,omitempty"`
	Iss    string     `json:"iss,omitempty"`
	Exp    *time.Time `json:"exp,omitempty"`
}

// Describe summarises accessToken. Opaque tokens yield only the fingerprint and length.
func Describe(accessToken string) Summary {
	s := Summary{
		Fingerprint: Fingerprint(accessToken),
		Length:      len(accessToken),
	}
	if strings.Count(accessToken, ".") != 2 {
		return s
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(accessToken, jwtlib.MapClaims{})
	if err != nil {
		return s
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return s
	}

	s.JWT = true
	if aud, err := claims.GetAudience(); err == nil {
		s.Aud = aud
	}
	if iss, err := claims.GetIssuer(); err == nil {
		s.Iss = iss
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.Exp = utils.Ptr(exp.Time.UTC())
	}
	if scp, ok := claims["scp"].(string); ok {
		s.Scopes = strings.Fields(scp)
	}
	s.Roles = utils.ToStringSlice(claims["roles"])
	return s
}

// Fingerprint returns a short blake2b digest of the token, stable across calls.
func Fingerprint(accessToken string) string {
	if accessToken == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:fingerprintBytes])
}

// Expired reports whether the token carries an exp claim in the past.
func (s Summary) Expired(now time.Time) bool {
	return s.Exp != nil && !now.Before(*s.Exp)
}

func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("fingerprint", s.Fingerprint).Int("length", s.Length)
	if !s.JWT {
		return
	}
	e.Strs("aud", s.Aud).Strs("scp", s.Scopes)
	if len(s.Roles) > 0 {
		e.Strs("roles", s.Roles)
	}
	if s.Iss != "" {
		e.Str("iss", s.Iss)
	}
	if s.Exp != nil {
		e.Time("exp", *s.Exp)
	}
}
