package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/oauthmodel"
	"golang.org/x/oauth2"
)

const stateLength = 32

// AuthorizationSession is the state of a single login attempt. It lives only
// for the duration of one Login call.
type AuthorizationSession struct {
	ID           string
	Params       oauthmodel.AuthorizationParameters
	CodeVerifier string
	AuthURL      string
	CreatedAt    time.Time
}

func newSession(cfg *oauth2.Config, now time.Time) (*AuthorizationSession, error) {
	verifier := oauth2.GenerateVerifier()
	s := &AuthorizationSession{
		ID:           uuid.NewString(),
		CodeVerifier: verifier,
		CreatedAt:    now,
		Params: oauthmodel.AuthorizationParameters{
			ClientID:            cfg.ClientID,
			ResponseType:        oauthmodel.CodeResponseType,
			RedirectURI:         cfg.RedirectURL,
			ResponseMode:        oauthmodel.QueryResponseMode,
			Scope:               cfg.Scopes,
			State:               generateRandomString(stateLength),
			CodeChallenge:       oauth2.S256ChallengeFromVerifier(verifier),
			CodeChallengeMethod: oauthmodel.CodeMethodTypeS256,
		},
	}
	if err := s.Params.Validate(); err != nil {
		return nil, errs.Join(errs.ErrConfig, err)
	}

	s.AuthURL = cfg.AuthCodeURL(
		s.Params.State,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("response_mode", string(s.Params.ResponseMode)),
	)
	return s, nil
}

// tokenRequest builds the exchange for code against this session.
func (s *AuthorizationSession) tokenRequest(code string) oauthmodel.TokenRequest {
	return oauthmodel.TokenRequest{
		ClientID:     s.Params.ClientID,
		Code:         code,
		RedirectURI:  s.Params.RedirectURI,
		CodeVerifier: s.CodeVerifier,
	}
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
